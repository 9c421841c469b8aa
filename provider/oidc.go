// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-secure-stdlib/strutil"
	"golang.org/x/oauth2"
)

// OIDCProvider is an OAuth2Provider whose endpoints are discovered from an
// OIDC issuer. When the token response carries an id_token, it's verified
// before the token is handed out.
type OIDCProvider struct {
	*OAuth2Provider

	verifier *oidc.IDTokenVerifier

	mu sync.Mutex

	// backgroundCtx is the context used by the provider for background
	// activities like: refreshing JWKs key sets
	backgroundCtx context.Context

	// backgroundCtxCancel is used to cancel any background activities running
	// in spawned go routines.
	backgroundCtxCancel context.CancelFunc
}

// ensure that OIDCProvider implements the Provider interface
var _ Provider = (*OIDCProvider)(nil)

// NewOIDCProvider creates and initializes a Provider for the authorization
// code flow using OIDC discovery. Initializing the provider includes making
// an http request to the provider's issuer.
//
// See OIDCProvider.Done() which must be called to release provider resources.
func NewOIDCProvider(name string, c *Config, opt ...Option) (*OIDCProvider, error) {
	const op = "provider.NewOIDCProvider"
	if c == nil {
		return nil, fmt.Errorf("%s: provider config is nil: %w", op, ErrNilParameter)
	}
	if c.Issuer == "" {
		return nil, fmt.Errorf("%s: issuer is empty: %w", op, ErrInvalidIssuer)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: provider config is invalid: %w", op, err)
	}
	client, err := c.HttpClient()
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	// initializing the provider with it's background ctx/cancel will
	// allow us to use p.Done() to release any resources when returning errors
	// from this function.
	p := &OIDCProvider{
		backgroundCtx:       ctx,
		backgroundCtxCancel: cancel,
	}

	discovered, err := oidc.NewProvider(HttpClientContext(p.backgroundCtx, client), c.Issuer) // makes http req to issuer for discovery
	if err != nil {
		p.Done() // release the backgroundCtxCancel resources
		return nil, fmt.Errorf("%s: unable to create provider: %w", op, err)
	}

	// "openid" is required for oidc flows
	withOpenID := *c
	withOpenID.Scopes = append([]string{oidc.ScopeOpenID}, c.Scopes...)
	base, err := newOAuth2Provider(name, &withOpenID, discovered.Endpoint(), opt...)
	if err != nil {
		p.Done()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.OAuth2Provider = base

	algs := c.SupportedSigningAlgs
	if len(algs) == 0 {
		algs = []string{oidc.RS256}
	}
	p.verifier = discovered.Verifier(&oidc.Config{
		ClientID:             c.ClientId,
		SupportedSigningAlgs: algs,
		// audiences are checked below when configured
		SkipClientIDCheck: len(c.Audiences) > 0,
	})
	return p, nil
}

// Done with the provider's background resources and must be called for every
// OIDCProvider created
func (p *OIDCProvider) Done() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.backgroundCtxCancel != nil {
		p.backgroundCtxCancel()
		p.backgroundCtxCancel = nil
	}
}

// Exchange trades the authorization code for a token and verifies the
// id_token included in the response, if any.
func (p *OIDCProvider) Exchange(ctx context.Context, authorizationCode string) (*oauth2.Token, error) {
	const op = "OIDCProvider.Exchange"
	t, err := p.OAuth2Provider.Exchange(ctx, authorizationCode)
	if err != nil {
		return nil, err
	}
	rawIDToken, ok := t.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return t, nil
	}
	if err := p.verifyIDToken(ctx, rawIDToken); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrIdentityProvider, err)
	}
	return t, nil
}

func (p *OIDCProvider) verifyIDToken(ctx context.Context, rawIDToken string) error {
	const op = "OIDCProvider.verifyIDToken"
	idToken, err := p.verifier.Verify(HttpClientContext(ctx, p.client), rawIDToken)
	if err != nil {
		return fmt.Errorf("%s: %w: %s", op, ErrIdTokenVerificationFailed, err)
	}
	if len(p.config.Audiences) > 0 {
		for _, v := range p.config.Audiences {
			if strutil.StrListContains(idToken.Audience, v) {
				return nil
			}
		}
		return fmt.Errorf("%s: %w: %w", op, ErrIdTokenVerificationFailed, ErrInvalidAudience)
	}
	return nil
}
