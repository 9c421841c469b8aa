// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"fmt"
	"net/http"
)

// OAuthSession is the in-flight OAuth transaction of one browser session. It
// is created when an authentication attempt starts and consumed (and
// cleared) by the callback.
type OAuthSession struct {
	// State is the CSRF state token sent to the provider.
	State string

	// Provider is the name of the provider the attempt was started with.
	Provider string

	// Context selects the token handlers run once a token is obtained. An
	// empty Context means no context was given.
	Context string

	// Scope are the scopes that were requested.
	Scope []string

	// BackURL is where the user is sent once the flow completes.
	BackURL string
}

// IsComplete reports whether the fields a callback depends on are all set.
func (s *OAuthSession) IsComplete() bool {
	return s != nil && s.State != "" && s.Provider != "" && len(s.Scope) > 0
}

// Clone returns a deep copy of the session.
func (s *OAuthSession) Clone() *OAuthSession {
	if s == nil {
		return nil
	}
	c := *s
	c.Scope = append([]string(nil), s.Scope...)
	return &c
}

// Store holds at most one OAuthSession per browser session.
type Store interface {
	// Get returns the browser session's OAuthSession, or nil when there is
	// none.
	Get(r *http.Request) (*OAuthSession, error)

	// Set replaces the browser session's OAuthSession as a whole.
	Set(w http.ResponseWriter, r *http.Request, s *OAuthSession) error

	// Clear removes the browser session's OAuthSession. Clearing an absent
	// session is not an error.
	Clear(w http.ResponseWriter, r *http.Request) error
}

func validate(s *OAuthSession) error {
	const op = "session.validate"
	if s == nil {
		return fmt.Errorf("%s: oauth session is nil: %w", op, ErrNilParameter)
	}
	if s.State == "" || s.Provider == "" || s.BackURL == "" {
		return fmt.Errorf("%s: state, provider and back url are required: %w", op, ErrIncomplete)
	}
	return nil
}
