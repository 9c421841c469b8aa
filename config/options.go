// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package config

import (
	"os"

	"github.com/caarlos0/env/v11"
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

type configOptions struct {
	withEnvironment map[string]string
	withLogger      hclog.Logger
}

func configDefaults() configOptions {
	return configOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getConfigOpts(opt ...Option) configOptions {
	opts := configDefaults()
	ApplyOpts(&opts, opt...)
	if opts.withEnvironment == nil {
		opts.withEnvironment = env.ToMap(os.Environ())
	}
	return opts
}

// WithEnvironment replaces the process environment as the source of
// overrides.
func WithEnvironment(environ map[string]string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withEnvironment = environ
		}
	}
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}
