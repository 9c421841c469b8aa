// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/oauthlogin/handler"
	"github.com/hashicorp/oauthlogin/provider"
	"github.com/hashicorp/oauthlogin/session"
)

func (p Provider) providerConfig() *provider.Config {
	return &provider.Config{
		ClientId:             p.ClientID,
		ClientSecret:         provider.ClientSecret(p.ClientSecret),
		RedirectUrl:          p.RedirectURL,
		Scopes:               p.Scopes,
		AuthUrl:              p.AuthURL,
		TokenUrl:             p.TokenURL,
		Issuer:               p.Issuer,
		SupportedSigningAlgs: p.SigningAlgs,
		Audiences:            p.Audiences,
		ResponseMode:         p.ResponseMode,
		ProviderCA:           p.ProviderCA,
	}
}

// BuildProviders creates a registry with every configured provider. OIDC
// providers discover their endpoints while being built. Call Done on the
// registry once it is no longer needed.
func (c *Config) BuildProviders(logger hclog.Logger) (*provider.Registry, error) {
	const op = "Config.BuildProviders"
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	r, err := provider.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, pc := range c.Providers {
		opts := []provider.Option{provider.WithLogger(logger)}
		if pc.ClientSecretInParams {
			opts = append(opts, provider.WithClientSecretInParams())
		}
		var p provider.Provider
		if pc.Issuer != "" {
			p, err = provider.NewOIDCProvider(pc.Name, pc.providerConfig(), opts...)
		} else {
			p, err = provider.NewOAuth2Provider(pc.Name, pc.providerConfig(), opts...)
		}
		if err != nil {
			r.Done()
			return nil, fmt.Errorf("%s: provider %q: %w", op, pc.Name, err)
		}
		if err := r.Add(p); err != nil {
			r.Done()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return r, nil
}

// Descriptors returns a copy of the configured token handlers.
func (c *Config) Descriptors() []handler.Descriptor {
	out := make([]handler.Descriptor, 0, len(c.Handlers))
	for _, d := range c.Handlers {
		if d.Priority != nil {
			d.Priority = handler.Priority(*d.Priority)
		}
		if d.Options != nil {
			opts := make(map[string]string, len(d.Options))
			for k, v := range d.Options {
				opts[k] = v
			}
			d.Options = opts
		}
		out = append(out, d)
	}
	return out
}

// SessionStore creates the configured session store.
func (c *Config) SessionStore() *session.MemoryStore {
	return session.NewMemoryStore(
		session.WithTTL(c.Session.TTL),
		session.WithCookieName(c.Session.CookieName),
		session.WithSecureCookie(c.Session.SecureCookie),
	)
}
