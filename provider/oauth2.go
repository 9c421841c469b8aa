// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-secure-stdlib/strutil"
	"golang.org/x/oauth2"
)

// OAuth2Provider provides integration with a provider using the 3-legged
// OAuth2 authorization code flow against explicitly configured endpoints.
type OAuth2Provider struct {
	name         string
	config       *Config
	oauth2Config oauth2.Config
	client       *http.Client
	logger       hclog.Logger
}

// ensure that OAuth2Provider implements the Provider interface
var _ Provider = (*OAuth2Provider)(nil)

// NewOAuth2Provider creates a Provider for the OAuth2 authorization code flow
// using the AuthUrl and TokenUrl of the config.
//
// Supported options: WithLogger, WithClientSecretInParams
func NewOAuth2Provider(name string, c *Config, opt ...Option) (*OAuth2Provider, error) {
	const op = "provider.NewOAuth2Provider"
	if c == nil {
		return nil, fmt.Errorf("%s: provider config is nil: %w", op, ErrNilParameter)
	}
	if c.AuthUrl == "" || c.TokenUrl == "" {
		return nil, fmt.Errorf("%s: auth and token URLs are required: %w", op, ErrInvalidParameter)
	}
	return newOAuth2Provider(name, c, oauth2.Endpoint{AuthURL: c.AuthUrl, TokenURL: c.TokenUrl}, opt...)
}

func newOAuth2Provider(name string, c *Config, endpoint oauth2.Endpoint, opt ...Option) (*OAuth2Provider, error) {
	const op = "provider.newOAuth2Provider"
	if name == "" {
		return nil, fmt.Errorf("%s: provider name is empty: %w", op, ErrInvalidParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: provider config is invalid: %w", op, err)
	}
	opts := getProviderOpts(opt...)

	client, err := c.HttpClient()
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
	}
	if opts.withAuthStyle {
		endpoint.AuthStyle = oauth2.AuthStyleInParams
	}
	return &OAuth2Provider{
		name:   name,
		config: c,
		oauth2Config: oauth2.Config{
			ClientID:     c.ClientId,
			ClientSecret: string(c.ClientSecret),
			RedirectURL:  c.RedirectUrl,
			Endpoint:     endpoint,
			Scopes:       strutil.RemoveDuplicatesStable(c.Scopes, false),
		},
		client: client,
		logger: opts.withLogger.Named(name),
	}, nil
}

// Name returns the name the provider was created with.
func (p *OAuth2Provider) Name() string { return p.name }

// DefaultScopes returns a copy of the configured scopes.
func (p *OAuth2Provider) DefaultScopes() []string {
	return append([]string{}, p.oauth2Config.Scopes...)
}

// AuthURL will generate a URL the caller can use to kick off an OAuth2
// authorization code flow with an IdP, along with the state token embedded
// in it.
func (p *OAuth2Provider) AuthURL(ctx context.Context, scopes []string) (*AuthRequest, error) {
	const op = "OAuth2Provider.AuthURL"
	state, err := NewState()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cfg := p.oauth2Config
	cfg.Scopes = scopes

	var authCodeOpts []oauth2.AuthCodeOption
	if p.config.ResponseMode != "" {
		authCodeOpts = append(authCodeOpts, oauth2.SetAuthURLParam("response_mode", p.config.ResponseMode))
	}
	return &AuthRequest{
		URL:    cfg.AuthCodeURL(state, authCodeOpts...),
		State:  state,
		Scopes: scopes,
	}, nil
}

// Exchange will request a token from the token endpoint, using the
// authorizationCode received in an earlier successful authentication
// response. An error response from the token endpoint is reported as
// ErrIdentityProvider.
func (p *OAuth2Provider) Exchange(ctx context.Context, authorizationCode string) (*oauth2.Token, error) {
	const op = "OAuth2Provider.Exchange"
	if authorizationCode == "" {
		return nil, fmt.Errorf("%s: authorization code is empty: %w", op, ErrInvalidParameter)
	}
	t, err := p.oauth2Config.Exchange(HttpClientContext(ctx, p.client), authorizationCode)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			p.logger.Debug("token endpoint rejected authorization code", "status", retrieveErr.Response.StatusCode)
			return nil, fmt.Errorf("%s: unable to exchange auth code with provider: %w: %w", op, ErrIdentityProvider, err)
		}
		return nil, fmt.Errorf("%s: unable to exchange auth code with provider: %w", op, err)
	}
	return t, nil
}

// Client returns an http client using the provider's transport which adds
// the token to every request.
func (p *OAuth2Provider) Client(ctx context.Context, t *oauth2.Token) *http.Client {
	return p.oauth2Config.Client(HttpClientContext(ctx, p.client), t)
}
