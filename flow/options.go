// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package flow

import (
	"net/http"

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

// ErrorHandler writes the response for an error returned by Authenticate or
// Callback when they are served through Controller.Handler.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type controllerOptions struct {
	withLogger       hclog.Logger
	withErrorHandler ErrorHandler
}

func controllerDefaults() controllerOptions {
	return controllerOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getControllerOpts(opt ...Option) controllerOptions {
	opts := controllerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger for the controller.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*controllerOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithErrorHandler replaces the default ErrorHandler, which responds 404 to
// ErrNotFound and logs anything else before responding 500.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o interface{}) {
		if o, ok := o.(*controllerOptions); ok && h != nil {
			o.withErrorHandler = h
		}
	}
}
