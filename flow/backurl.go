// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package flow

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

const (
	// BackURLParam is the request parameter naming the page to return to.
	BackURLParam = "BackURL"

	// BackURLHeader names the page to return to for AJAX requests.
	BackURLHeader = "X-Backurl"
)

// BackURL returns the page the user should be sent back to once the flow
// completes: the BackURL request parameter, then for AJAX requests the
// X-Backurl header, then the Referer. The first non-empty candidate is used
// if sameSite accepts it, otherwise baseURL is returned.
func BackURL(r *http.Request, baseURL string, sameSite func(string) bool) string {
	candidate := r.FormValue(BackURLParam)
	if candidate == "" && isAJAX(r) {
		candidate = r.Header.Get(BackURLHeader)
	}
	if candidate == "" {
		candidate = r.Referer()
	}
	return safeURL(candidate, baseURL, sameSite)
}

func safeURL(u, baseURL string, sameSite func(string) bool) string {
	if u == "" || sameSite == nil || !sameSite(u) {
		return baseURL
	}
	return u
}

func isAJAX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

// SameSite returns a predicate accepting relative paths and absolute URLs
// with the scheme and registrable domain (eTLD+1) of baseURL.
func SameSite(baseURL string) (func(string) bool, error) {
	const op = "flow.SameSite"
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to parse base url: %w", op, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" || base.Host == "" {
		return nil, fmt.Errorf("%s: base url %q must be an absolute http(s) url: %w", op, baseURL, ErrInvalidParameter)
	}
	site := registrableDomain(base.Hostname())
	return func(candidate string) bool {
		// browsers treat backslashes like slashes, so "/\evil.com" is
		// protocol relative
		if strings.ContainsAny(candidate, "\\\r\n\t") {
			return false
		}
		u, err := url.Parse(candidate)
		if err != nil {
			return false
		}
		if u.Scheme == "" && u.Host == "" {
			return strings.HasPrefix(candidate, "/") && !strings.HasPrefix(candidate, "//")
		}
		if u.Scheme != base.Scheme || u.Host == "" || u.User != nil {
			return false
		}
		return registrableDomain(u.Hostname()) == site
	}, nil
}

func registrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if net.ParseIP(host) != nil {
		return host
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// localhost, or a public suffix itself
		return host
	}
	return d
}
