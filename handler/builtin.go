// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/oauthlogin/provider"
	"golang.org/x/oauth2"
)

const (
	// KindLog logs the token's metadata. Options: "message".
	KindLog = "log"

	// KindRedirect ends the callback with a redirect. Options: "url".
	KindRedirect = "redirect"
)

// RegisterBuiltins registers the KindLog and KindRedirect factories.
func RegisterBuiltins(r *Registry, logger hclog.Logger) error {
	const op = "handler.RegisterBuiltins"
	if r == nil {
		return fmt.Errorf("%s: registry is nil: %w", op, ErrNilParameter)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if err := r.Register(KindLog, newLogHandler(logger.Named(KindLog))); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := r.Register(KindRedirect, newRedirectHandler); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func newLogHandler(logger hclog.Logger) Factory {
	return func(d Descriptor) (TokenHandler, error) {
		msg := d.Options["message"]
		if msg == "" {
			msg = "access token obtained"
		}
		return TokenHandlerFunc(func(_ context.Context, t *oauth2.Token, p provider.Provider) (http.Handler, error) {
			// never the token itself
			logger.Info(msg,
				"provider", p.Name(),
				"context", d.Context,
				"token_type", t.Type(),
				"expiry", t.Expiry,
				"refresh_token", t.RefreshToken != "",
			)
			return nil, nil
		}), nil
	}
}

func newRedirectHandler(d Descriptor) (TokenHandler, error) {
	const op = "handler.newRedirectHandler"
	target := d.Options["url"]
	if target == "" {
		return nil, fmt.Errorf("%s: url option is empty: %w", op, ErrInvalidParameter)
	}
	if _, err := url.Parse(target); err != nil {
		return nil, fmt.Errorf("%s: url option %q is invalid: %w", op, target, ErrInvalidParameter)
	}
	return TokenHandlerFunc(func(context.Context, *oauth2.Token, provider.Provider) (http.Handler, error) {
		return http.RedirectHandler(target, http.StatusFound), nil
	}), nil
}
