// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"net/http"
	"time"
)

// Option defines a common functional options type
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		o(opts)
	}
}

// DefaultTTL is how long an OAuthSession lives when no TTL is given.
const DefaultTTL = 10 * time.Minute

// DefaultCookieName is the name of the browser session id cookie.
const DefaultCookieName = "oauthlogin_sid"

type memoryStoreOptions struct {
	withTTL          time.Duration
	withCookieName   string
	withCookiePath   string
	withSecureCookie bool
	withSameSite     http.SameSite
}

func memoryStoreDefaults() memoryStoreOptions {
	return memoryStoreOptions{
		withTTL:        DefaultTTL,
		withCookieName: DefaultCookieName,
		withCookiePath: "/",
		// Lax keeps the cookie on the top-level GET redirect back from the
		// provider but not on a cross-site POST.
		withSameSite: http.SameSiteLaxMode,
	}
}

func getMemoryStoreOpts(opt ...Option) memoryStoreOptions {
	opts := memoryStoreDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithTTL sets how long an OAuthSession is kept before it reads as absent.
func WithTTL(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*memoryStoreOptions); ok && d > 0 {
			o.withTTL = d
		}
	}
}

// WithCookieName sets the name of the browser session id cookie.
func WithCookieName(name string) Option {
	return func(o interface{}) {
		if o, ok := o.(*memoryStoreOptions); ok && name != "" {
			o.withCookieName = name
		}
	}
}

// WithCookiePath sets the path of the browser session id cookie.
func WithCookiePath(path string) Option {
	return func(o interface{}) {
		if o, ok := o.(*memoryStoreOptions); ok && path != "" {
			o.withCookiePath = path
		}
	}
}

// WithSecureCookie marks the browser session id cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(o interface{}) {
		if o, ok := o.(*memoryStoreOptions); ok {
			o.withSecureCookie = secure
		}
	}
}
