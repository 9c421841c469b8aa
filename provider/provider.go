// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hashicorp/oauthlogin/internal/id"
	"golang.org/x/oauth2"
)

// Provider is a configured OAuth2 client for one identity provider, able to
// start an authorization code flow and to exchange the resulting code for an
// access token.
type Provider interface {
	// Name is the name the provider is registered under.
	Name() string

	// DefaultScopes are requested when an authentication attempt doesn't
	// name any scopes.
	DefaultScopes() []string

	// AuthURL creates the URL the user is sent to in order to authorize
	// the requested scopes, along with the freshly generated CSRF state
	// token embedded in that URL.
	AuthURL(ctx context.Context, scopes []string) (*AuthRequest, error)

	// Exchange trades an authorization code for an access token. Rejections
	// by the identity provider itself are reported with ErrIdentityProvider.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// Client returns an http client which authenticates its requests with
	// the token.
	Client(ctx context.Context, t *oauth2.Token) *http.Client
}

// AuthRequest is the start of one authorization code flow.
type AuthRequest struct {
	// URL is the provider's authorization URL for this attempt.
	URL string

	// State is the opaque CSRF token round-tripped through the provider.
	State string

	// Scopes are the scopes that were requested.
	Scopes []string
}

// NewState generates a CSRF state token.
func NewState() (string, error) {
	const op = "provider.NewState"
	s, err := id.New("st")
	if err != nil {
		return "", fmt.Errorf("%s: unable to generate state: %w", op, err)
	}
	return s, nil
}
