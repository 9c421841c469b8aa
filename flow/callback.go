// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package flow

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp/oauthlogin/provider"
)

const (
	// InvalidStateMessage is the body of the response to a callback which
	// doesn't match the stored OAuthSession.
	InvalidStateMessage = "Invalid session state."

	// InvalidTokenMessage is the body of the response to a callback for
	// which the identity provider refused to issue an access token.
	InvalidTokenMessage = "Invalid access token."
)

// Callback completes a login flow. The authorization code is exchanged for
// an access token which is passed to each token handler of the flow's
// context in priority order. The first response a handler returns is
// written, otherwise the user is redirected to the flow's back-URL.
//
// A code and state posted in the body are first relayed to this endpoint as
// a GET, through a page which is served with a 200. Invalid state, refused
// exchanges and handler errors are answered with a 400. The stored
// OAuthSession is cleared in every case except the relay. Only
// configuration errors, such as handler.ErrNoHandlers, are returned.
func (c *Controller) Callback(w http.ResponseWriter, r *http.Request) (retErr error) {
	const op = "Controller.Callback"
	var (
		resp  http.Handler
		relay bool
	)
	defer func() {
		if !relay {
			if err := c.config.Store.Clear(w, r); err != nil && retErr == nil {
				retErr = fmt.Errorf("%s: unable to clear oauth session: %w", op, err)
				resp = nil
			}
		}
		if retErr == nil && resp != nil {
			resp.ServeHTTP(w, r)
		}
	}()

	if err := r.ParseForm(); err != nil {
		c.logger.Error("unable to parse callback request", "error", err)
		resp = textResponse(http.StatusBadRequest, err.Error())
		return nil
	}
	result, s, err := c.validateState(w, r)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch result {
	case stateNeedsRedirect:
		relay = true
		resp = c.relayResponse(r)
		return nil
	case stateInvalid:
		c.logger.Debug("rejecting callback", "state", result)
		resp = textResponse(http.StatusBadRequest, InvalidStateMessage)
		return nil
	}

	backURL := safeURL(s.BackURL, c.config.BaseURL, c.sameSite)
	logger := c.logger.With("provider", s.Provider, "context", s.Context)

	if idpErr := r.Form.Get("error"); idpErr != "" {
		logger.Error("identity provider returned an error", "error", idpErr, "error_description", r.Form.Get("error_description"))
		resp = textResponse(http.StatusBadRequest, InvalidTokenMessage)
		return nil
	}

	p, err := c.config.Providers.Provider(s.Provider)
	if err != nil {
		logger.Error("unable to resolve provider", "error", err)
		resp = textResponse(http.StatusBadRequest, err.Error())
		return nil
	}
	token, err := p.Exchange(r.Context(), r.Form.Get("code"))
	switch {
	case errors.Is(err, provider.ErrIdentityProvider):
		logger.Error("identity provider refused the authorization code", "error", err)
		resp = textResponse(http.StatusBadRequest, InvalidTokenMessage)
		return nil
	case err != nil:
		logger.Error("unable to exchange authorization code", "error", err)
		resp = textResponse(http.StatusBadRequest, err.Error())
		return nil
	}

	handlers, err := c.config.Kinds.Handlers(c.config.Handlers, s.Context)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for i, h := range handlers {
		hResp, err := h.HandleToken(r.Context(), token, p)
		if err != nil {
			logger.Error("token handler failed", "handler", i, "error", err)
			resp = textResponse(http.StatusBadRequest, err.Error())
			return nil
		}
		if resp == nil && hResp != nil {
			resp = hResp
		}
	}
	if resp == nil {
		resp = http.RedirectHandler(backURL, http.StatusFound)
	}
	return nil
}

func textResponse(code int, msg string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, msg, code)
	})
}
