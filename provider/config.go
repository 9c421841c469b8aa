// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-secure-stdlib/strutil"
	"github.com/hashicorp/oauthlogin/internal/httpclient"
)

type ClientSecret string

// RedactedClientSecret is the redacted string or json for an oauth client secret
const RedactedClientSecret = "[REDACTED: client secret]"

// String will redact the client secret
func (t ClientSecret) String() string {
	return RedactedClientSecret
}

// MarshalJSON will redact the client secret
func (t ClientSecret) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedClientSecret)
}

// ResponseModeFormPost asks the provider to deliver the authorization
// response as an auto-submitted html form POST instead of a query string.
const ResponseModeFormPost = "form_post"

// Config represents the configuration of one OAuth2 provider used for the
// authorization code grant.
type Config struct {
	// ClientId is the relying party id
	ClientId string

	// ClientSecret is the relying party secret
	ClientSecret ClientSecret

	// RedirectUrl is the callback URL registered with the provider.
	RedirectUrl string

	// Scopes are the default scopes requested when an authentication
	// attempt does not name any.
	Scopes []string

	// AuthUrl and TokenUrl are the provider's endpoints. Both are required
	// unless Issuer is set, in which case they are discovered.
	AuthUrl  string
	TokenUrl string

	// Issuer is an optional OIDC issuer used for endpoint discovery and
	// id_token verification.
	Issuer string

	// SupportedSigningAlgs is a list of id_token signing algorithms the OIDC
	// provider accepts. Defaults to RS256 when empty.
	SupportedSigningAlgs []string

	// Audiences is a list optional case-sensitive strings used when verifying
	// an id_token's "aud" claim
	Audiences []string

	// ResponseMode is an optional OAuth2 response_mode (see
	// ResponseModeFormPost).
	ResponseMode string

	// ProviderCA is an optional CA cert to use when sending requests to the provider.
	ProviderCA string
}

// Validate the provider configuration. Every problem found is reported, not
// just the first one. Validate doesn't verify the Issuer is discoverable via
// an http request.
func (c *Config) Validate() error {
	const op = "provider.(Config).Validate"
	if c == nil {
		return fmt.Errorf("%s: provider config is nil: %w", op, ErrNilParameter)
	}
	var result *multierror.Error
	if c.ClientId == "" {
		result = multierror.Append(result, fmt.Errorf("%s: client id is empty: %w", op, ErrInvalidParameter))
	}
	if c.ClientSecret == "" {
		result = multierror.Append(result, fmt.Errorf("%s: client secret is empty: %w", op, ErrInvalidParameter))
	}
	if err := validateURL(c.RedirectUrl); err != nil {
		result = multierror.Append(result, fmt.Errorf("%s: redirect URL: %w", op, err))
	}
	switch c.Issuer {
	case "":
		if err := validateURL(c.AuthUrl); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: auth URL: %w", op, err))
		}
		if err := validateURL(c.TokenUrl); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: token URL: %w", op, err))
		}
	default:
		if err := validateURL(c.Issuer); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: issuer %s is invalid: %w", op, err, ErrInvalidIssuer))
		}
	}
	if c.ResponseMode != "" && !strutil.StrListContains([]string{"query", ResponseModeFormPost}, c.ResponseMode) {
		result = multierror.Append(result, fmt.Errorf("%s: unsupported response mode %q: %w", op, c.ResponseMode, ErrInvalidParameter))
	}
	return result.ErrorOrNil()
}

func validateURL(u string) error {
	if u == "" {
		return fmt.Errorf("URL is empty: %w", ErrInvalidParameter)
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return fmt.Errorf("%q is not a URL: %w", u, ErrInvalidParameter)
	}
	if !strutil.StrListContains([]string{"https", "http"}, parsed.Scheme) {
		return fmt.Errorf("%q scheme is not http or https: %w", u, ErrInvalidParameter)
	}
	return nil
}

// HttpClient is a helper function that creates a new http client for the
// provider configured
func (c *Config) HttpClient() (*http.Client, error) {
	const op = "provider.(Config).HttpClient"
	client, err := httpclient.New(c.ProviderCA)
	if err != nil {
		if errors.Is(err, httpclient.ErrInvalidCertificatePem) {
			return nil, fmt.Errorf("%s: could not parse CA PEM value: %w", op, ErrInvalidCACert)
		}
		return nil, fmt.Errorf("%s: could not get an http client: %w", op, err)
	}
	return client, nil
}

// HttpClientContext is a helper function that returns a new Context that
// carries the provided HTTP client. This method sets the same context key used
// by the github.com/coreos/go-oidc and golang.org/x/oauth2 packages, so the
// returned context works for those packages as well.
func HttpClientContext(ctx context.Context, client *http.Client) context.Context {
	// simple to implement as a wrapper for the coreos package
	return oidc.ClientContext(ctx, client)
}
