// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package flow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/oauthlogin/handler"
	"github.com/hashicorp/oauthlogin/provider"
	"github.com/hashicorp/oauthlogin/session"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const testBaseURL = "https://app.example.com/"

// stubProvider is a Provider which never leaves the process.
type stubProvider struct {
	name     string
	defaults []string

	mu        sync.Mutex
	exchange  func(code string) (*oauth2.Token, error)
	exchanges []string
}

var _ provider.Provider = (*stubProvider)(nil)

func (p *stubProvider) Name() string            { return p.name }
func (p *stubProvider) DefaultScopes() []string { return append([]string{}, p.defaults...) }

func (p *stubProvider) AuthURL(_ context.Context, scopes []string) (*provider.AuthRequest, error) {
	state, err := provider.NewState()
	if err != nil {
		return nil, err
	}
	u := "https://idp.example.com/authorize?" + url.Values{
		"state": {state},
		"scope": {strings.Join(scopes, " ")},
	}.Encode()
	return &provider.AuthRequest{URL: u, State: state, Scopes: scopes}, nil
}

func (p *stubProvider) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	p.mu.Lock()
	p.exchanges = append(p.exchanges, code)
	fn := p.exchange
	p.mu.Unlock()
	if fn != nil {
		return fn(code)
	}
	return &oauth2.Token{AccessToken: "at_" + code, TokenType: "Bearer"}, nil
}

func (p *stubProvider) Client(context.Context, *oauth2.Token) *http.Client { return http.DefaultClient }

func (p *stubProvider) Exchanges() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.exchanges...)
}

// recorder backs the "record" handler kind: each handler appends its name
// option when invoked. It fails with the fail option as message, or responds
// with the respond option as body (and a 201), when they are set.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (rc *recorder) factory(d handler.Descriptor) (handler.TokenHandler, error) {
	name, respond, fail := d.Options["name"], d.Options["respond"], d.Options["fail"]
	return handler.TokenHandlerFunc(func(context.Context, *oauth2.Token, provider.Provider) (http.Handler, error) {
		rc.mu.Lock()
		rc.calls = append(rc.calls, name)
		rc.mu.Unlock()
		if fail != "" {
			return nil, errors.New(fail)
		}
		if respond == "" {
			return nil, nil
		}
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(respond))
		}), nil
	}), nil
}

func (rc *recorder) Calls() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]string{}, rc.calls...)
}

type testEnv struct {
	ctl      *Controller
	store    *session.MemoryStore
	provider *stubProvider
	recorder *recorder
	kinds    *handler.Registry
}

func newTestEnv(t *testing.T, descriptors []handler.Descriptor) *testEnv {
	t.Helper()
	require := require.New(t)
	env := &testEnv{
		store:    session.NewMemoryStore(),
		provider: &stubProvider{name: "acme", defaults: []string{"openid", "email"}},
		recorder: &recorder{},
		kinds:    handler.NewRegistry(),
	}
	require.NoError(env.kinds.Register("record", env.recorder.factory))
	require.NoError(handler.RegisterBuiltins(env.kinds, nil))
	providers, err := provider.NewRegistry(env.provider)
	require.NoError(err)
	env.ctl, err = NewController(&Config{
		BaseURL:   testBaseURL,
		Providers: providers,
		Store:     env.store,
		Handlers:  descriptors,
		Kinds:     env.kinds,
	})
	require.NoError(err)
	return env
}

func record(name, flowContext string, priority *int) handler.Descriptor {
	return handler.Descriptor{
		Kind:     "record",
		Context:  flowContext,
		Priority: priority,
		Options:  map[string]string{"name": name},
	}
}

// authenticate starts a flow and returns the browser session cookies along
// with the state sent to the provider.
func (env *testEnv) authenticate(t *testing.T, query string) ([]*http.Cookie, string) {
	t.Helper()
	require := require.New(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/oauth2/authenticate?"+query, nil)
	require.NoError(env.ctl.Authenticate(rec, req))
	require.Equal(http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(err)
	state := loc.Query().Get("state")
	require.NotEmpty(state)
	return rec.Result().Cookies(), state
}

func (env *testEnv) stored(t *testing.T, cookies []*http.Cookie) *session.OAuthSession {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	s, err := env.store.Get(req)
	require.NoError(t, err)
	return s
}

func withCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func callbackGET(query string, cookies []*http.Cookie) *http.Request {
	return withCookies(httptest.NewRequest(http.MethodGet, "/oauth2/callback?"+query, nil), cookies)
}

func callbackPOST(query string, form url.Values, cookies []*http.Cookie) *http.Request {
	target := "/oauth2/callback"
	if query != "" {
		target += "?" + query
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return withCookies(req, cookies)
}
