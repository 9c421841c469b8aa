// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package flow

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/oauthlogin/handler"
	"github.com/hashicorp/oauthlogin/provider"
	"github.com/hashicorp/oauthlogin/session"
)

// DefaultSegment is the URL segment the flow's endpoints are served under
// when Config.Segment is empty.
const DefaultSegment = "oauth2"

// Config is the static configuration of a Controller.
type Config struct {
	// Segment is the URL segment the authenticate and callback endpoints
	// are served under. Defaults to DefaultSegment.
	Segment string

	// BaseURL is the application's absolute base URL. Users are sent back
	// to it when no usable back-URL is found.
	BaseURL string

	// Providers resolves provider names.
	Providers provider.Resolver

	// Store holds the in-flight OAuthSession of each browser session.
	Store session.Store

	// Handlers are the configured token handlers.
	Handlers []handler.Descriptor

	// Kinds creates the token handlers from their descriptors.
	Kinds *handler.Registry

	// SameSite reports whether a URL is safe to send the user back to. When
	// nil, SameSite(BaseURL) is used.
	SameSite func(u string) bool
}

// Validate the Config, reporting every problem found.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	var result *multierror.Error
	if strings.Contains(strings.Trim(c.Segment, "/"), "/") {
		result = multierror.Append(result, fmt.Errorf("segment %q must be a single path segment: %w", c.Segment, ErrInvalidParameter))
	}
	if u, err := url.Parse(c.BaseURL); err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		result = multierror.Append(result, fmt.Errorf("base url %q must be an absolute http(s) url: %w", c.BaseURL, ErrInvalidParameter))
	}
	if c.Providers == nil {
		result = multierror.Append(result, fmt.Errorf("providers are nil: %w", ErrNilParameter))
	}
	if c.Store == nil {
		result = multierror.Append(result, fmt.Errorf("store is nil: %w", ErrNilParameter))
	}
	if c.Kinds == nil {
		result = multierror.Append(result, fmt.Errorf("handler kinds are nil: %w", ErrNilParameter))
	} else {
		for i, d := range c.Handlers {
			if !c.Kinds.Has(d.Kind) {
				result = multierror.Append(result, fmt.Errorf("handler %d: %q: %w", i, d.Kind, handler.ErrUnknownKind))
			}
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Config) segment() string {
	s := strings.Trim(c.Segment, "/")
	if s == "" {
		return DefaultSegment
	}
	return s
}
