// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"github.com/hashicorp/go-hclog"
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

// providerOptions is the set of available options for the provider
// constructors.
type providerOptions struct {
	withLogger    hclog.Logger
	withAuthStyle bool
}

// providerDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func providerDefaults() providerOptions {
	return providerOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

// getProviderOpts gets the defaults and applies the opt overrides passed in.
func getProviderOpts(opt ...Option) providerOptions {
	opts := providerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger for a provider.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithClientSecretInParams sends the client credentials in the token request
// body instead of the Authorization header. Some providers (GitHub, Slack)
// only accept the former.
func WithClientSecretInParams() Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok {
			o.withAuthStyle = true
		}
	}
}
