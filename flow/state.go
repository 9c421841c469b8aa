// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package flow

import (
	"fmt"
	"net/http"

	"github.com/hashicorp/oauthlogin/session"
)

type stateResult int

const (
	stateInvalid stateResult = iota
	stateValid
	stateNeedsRedirect
)

func (r stateResult) String() string {
	switch r {
	case stateValid:
		return "valid"
	case stateNeedsRedirect:
		return "needs-redirect"
	default:
		return "invalid"
	}
}

// validateState checks the callback request against the stored
// OAuthSession. A state and code posted in the body need to be relayed as a
// GET first and are not checked. Otherwise the stored session must be
// complete and its state must equal the state query parameter; when it
// isn't, the stored session is cleared. The session is only returned when
// valid. r.ParseForm must have been called.
func (c *Controller) validateState(w http.ResponseWriter, r *http.Request) (stateResult, *session.OAuthSession, error) {
	const op = "Controller.validateState"
	if r.PostForm.Get("state") != "" && r.PostForm.Get("code") != "" {
		return stateNeedsRedirect, nil, nil
	}
	s, err := c.config.Store.Get(r)
	if err != nil {
		return stateInvalid, nil, fmt.Errorf("%s: unable to read oauth session: %w", op, err)
	}
	if !s.IsComplete() || r.URL.Query().Get("state") != s.State {
		if err := c.config.Store.Clear(w, r); err != nil {
			return stateInvalid, nil, fmt.Errorf("%s: unable to clear oauth session: %w", op, err)
		}
		return stateInvalid, nil, nil
	}
	return stateValid, s, nil
}
