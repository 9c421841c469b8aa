// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package flow

import (
	"net/http"
	"strings"

	"darlinggo.co/trout/v2"
	"github.com/hashicorp/go-hclog"
)

func (c *Controller) logEndpoint(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := c.logger.With("endpoint", r.Header.Get("Trout-Pattern"), "method", r.Method)
		for k, v := range trout.RequestVars(r) {
			logger = logger.With("url."+strings.ToLower(k), v)
		}
		r = r.WithContext(hclog.WithContext(r.Context(), logger))
		logger.Debug("serving request")
		h.ServeHTTP(w, r)
		logger.Debug("served request")
	})
}

func (c *Controller) serve(fn func(http.ResponseWriter, *http.Request) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			c.errorHandler(w, r, err)
		}
	})
}

// Handler serves Authenticate at /<segment>/authenticate and Callback at
// /<segment>/callback. It can be mounted under http.StripPrefix as long as
// the stripped path still starts with /<segment>.
func (c *Controller) Handler() http.Handler {
	var router trout.Router
	router.SetPrefix("/" + c.segment)

	router.Endpoint("/authenticate").Methods("GET", "POST").
		Handler(c.logEndpoint(c.serve(c.Authenticate)))
	router.Endpoint("/callback").Methods("GET", "POST").
		Handler(c.logEndpoint(c.serve(c.Callback)))

	return router
}
