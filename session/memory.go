// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-uuid"
)

type memoryEntry struct {
	session *OAuthSession
	expires time.Time
}

// MemoryStore is an in-process Store. Browser sessions are identified by a
// random id kept in a cookie. It is safe for concurrent use.
type MemoryStore struct {
	opts memoryStoreOptions
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

// ensure that MemoryStore implements the Store interface
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
//
// Supported options: WithTTL, WithCookieName, WithCookiePath, WithSecureCookie
func NewMemoryStore(opt ...Option) *MemoryStore {
	return &MemoryStore{
		opts:    getMemoryStoreOpts(opt...),
		now:     time.Now,
		entries: map[string]memoryEntry{},
	}
}

func (m *MemoryStore) sessionID(r *http.Request) string {
	c, err := r.Cookie(m.opts.withCookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.ParseUUID(c.Value); err != nil {
		return ""
	}
	return c.Value
}

// Get returns a copy of the browser session's OAuthSession, or nil when
// there is none or it expired.
func (m *MemoryStore) Get(r *http.Request) (*OAuthSession, error) {
	const op = "MemoryStore.Get"
	if r == nil {
		return nil, fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	sid := m.sessionID(r)
	if sid == "" {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[sid]
	if !ok {
		return nil, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, sid)
		return nil, nil
	}
	return e.session.Clone(), nil
}

// Set replaces the browser session's OAuthSession. A browser session id
// cookie is issued when the request doesn't carry one.
func (m *MemoryStore) Set(w http.ResponseWriter, r *http.Request, s *OAuthSession) error {
	const op = "MemoryStore.Set"
	switch {
	case w == nil:
		return fmt.Errorf("%s: response writer is nil: %w", op, ErrNilParameter)
	case r == nil:
		return fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	if err := validate(s); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	sid := m.sessionID(r)
	if sid == "" {
		var err error
		if sid, err = uuid.GenerateUUID(); err != nil {
			return fmt.Errorf("%s: unable to generate session id: %w", op, err)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     m.opts.withCookieName,
			Value:    sid,
			Path:     m.opts.withCookiePath,
			HttpOnly: true,
			Secure:   m.opts.withSecureCookie,
			SameSite: m.opts.withSameSite,
		})
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sid] = memoryEntry{
		session: s.Clone(),
		expires: m.now().Add(m.opts.withTTL),
	}
	return nil
}

// Clear removes the browser session's OAuthSession.
func (m *MemoryStore) Clear(_ http.ResponseWriter, r *http.Request) error {
	const op = "MemoryStore.Clear"
	if r == nil {
		return fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	sid := m.sessionID(r)
	if sid == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sid)
	return nil
}

// Sweep removes every expired OAuthSession and returns how many were
// removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for sid, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, sid)
			removed++
		}
	}
	return removed
}

// Len returns the number of OAuthSessions held, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
