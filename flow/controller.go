// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package flow

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-hclog"
)

// Controller runs the authorization code login flow: Authenticate starts it
// and Callback completes it.
type Controller struct {
	config       Config
	segment      string
	sameSite     func(string) bool
	logger       hclog.Logger
	errorHandler ErrorHandler
}

// NewController creates a Controller from a valid Config. The Config is
// copied.
//
// Supported options: WithLogger, WithErrorHandler
func NewController(c *Config, opt ...Option) (*Controller, error) {
	const op = "flow.NewController"
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	opts := getControllerOpts(opt...)
	ctl := &Controller{
		config:       *c,
		segment:      c.segment(),
		sameSite:     c.SameSite,
		logger:       opts.withLogger,
		errorHandler: opts.withErrorHandler,
	}
	ctl.config.Handlers = append(ctl.config.Handlers[:0:0], c.Handlers...)
	if ctl.sameSite == nil {
		var err error
		if ctl.sameSite, err = SameSite(c.BaseURL); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if ctl.errorHandler == nil {
		ctl.errorHandler = ctl.defaultErrorHandler
	}
	return ctl, nil
}

// Segment is the URL segment the endpoints are served under.
func (c *Controller) Segment() string { return c.segment }

func (c *Controller) defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		c.logger.Debug("not found", "path", r.URL.Path, "error", err)
		http.NotFound(w, r)
		return
	}
	c.logger.Error("unable to serve request", "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
