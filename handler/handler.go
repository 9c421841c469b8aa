// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"context"
	"net/http"

	"github.com/hashicorp/oauthlogin/provider"
	"golang.org/x/oauth2"
)

// GlobalContext is the context of handlers which run for every login flow.
const GlobalContext = "*"

// TokenHandler is invoked with a freshly obtained access token to perform
// application specific post-login work.
//
// A non-nil http.Handler return value is a complete response that ends the
// callback instead of the usual redirect back to the application.
type TokenHandler interface {
	HandleToken(ctx context.Context, t *oauth2.Token, p provider.Provider) (http.Handler, error)
}

// TokenHandlerFunc is an adapter to allow the use of ordinary functions as
// TokenHandlers.
type TokenHandlerFunc func(ctx context.Context, t *oauth2.Token, p provider.Provider) (http.Handler, error)

// HandleToken calls f(ctx, t, p).
func (f TokenHandlerFunc) HandleToken(ctx context.Context, t *oauth2.Token, p provider.Provider) (http.Handler, error) {
	return f(ctx, t, p)
}

// Descriptor is the static configuration of one token handler.
type Descriptor struct {
	// Kind identifies the Factory used to create the handler.
	Kind string `yaml:"kind"`

	// Context is the login flow context the handler runs for, or
	// GlobalContext.
	Context string `yaml:"context"`

	// Priority orders handlers, lowest first. Nil means unordered.
	Priority *int `yaml:"priority,omitempty"`

	// Options are passed to the Factory.
	Options map[string]string `yaml:"options,omitempty"`
}

// Priority is a helper for building Descriptors.
func Priority(p int) *int { return &p }
