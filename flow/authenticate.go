// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package flow

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/oauthlogin/provider"
	"github.com/hashicorp/oauthlogin/session"
)

// Authenticate starts a login flow with the provider named by the request's
// provider parameter, requesting the scope[] scopes. An empty sequence,
// given as a single blank scope[]=, requests the provider's default scopes.
// The in-flight OAuthSession is stored, replacing any earlier one, and the
// user is redirected to the provider.
//
// ErrNotFound is returned without writing anything when the provider is
// missing or unknown, or scope is missing or not a sequence.
func (c *Controller) Authenticate(w http.ResponseWriter, r *http.Request) error {
	const op = "Controller.Authenticate"
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%s: unable to parse request: %w: %w", op, ErrNotFound, err)
	}
	name := r.Form.Get("provider")
	if name == "" {
		return fmt.Errorf("%s: missing provider: %w", op, ErrNotFound)
	}
	scopes, ok := parseScope(r.Form)
	if !ok {
		return fmt.Errorf("%s: scope must be given as scope[]: %w", op, ErrNotFound)
	}
	p, err := c.config.Providers.Provider(name)
	switch {
	case errors.Is(err, provider.ErrUnknownProvider):
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	case err != nil:
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(scopes) == 0 {
		scopes = p.DefaultScopes()
	}
	authReq, err := p.AuthURL(r.Context(), scopes)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s := &session.OAuthSession{
		State:    authReq.State,
		Provider: p.Name(),
		Context:  r.Form.Get("context"),
		Scope:    scopes,
		BackURL:  BackURL(r, c.config.BaseURL, c.sameSite),
	}
	if err := c.config.Store.Set(w, r, s); err != nil {
		return fmt.Errorf("%s: unable to store oauth session: %w", op, err)
	}
	c.logger.Debug("starting authentication", "provider", s.Provider, "context", s.Context, "scope", s.Scope)
	http.Redirect(w, r, authReq.URL, http.StatusFound)
	return nil
}

// parseScope reads the scope sequence from the form. It is given either as
// repeated scope[] values or as indexed scope[0], scope[1]... values. Blank
// values are dropped, so scope[]= is the empty sequence. A plain scope value
// isn't a sequence, and no scope keys at all is a missing scope.
func parseScope(form url.Values) ([]string, bool) {
	if _, ok := form["scope"]; ok {
		return nil, false
	}
	raw, found := form["scope[]"]
	scopes := appendNonBlank([]string{}, raw)

	type indexed struct {
		i int
		v []string
	}
	var byIndex []indexed
	for k, v := range form {
		if !strings.HasPrefix(k, "scope[") || !strings.HasSuffix(k, "]") || k == "scope[]" {
			continue
		}
		i, err := strconv.Atoi(k[len("scope[") : len(k)-1])
		if err != nil || i < 0 {
			return nil, false
		}
		byIndex = append(byIndex, indexed{i: i, v: v})
		found = true
	}
	if !found {
		return nil, false
	}
	sort.Slice(byIndex, func(a, b int) bool { return byIndex[a].i < byIndex[b].i })
	for _, e := range byIndex {
		scopes = appendNonBlank(scopes, e.v)
	}
	return scopes, true
}

func appendNonBlank(dst, values []string) []string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			dst = append(dst, v)
		}
	}
	return dst
}
