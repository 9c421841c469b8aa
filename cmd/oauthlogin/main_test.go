// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/oauthlogin/config"
	"github.com/hashicorp/oauthlogin/handler"
	"github.com/hashicorp/oauthlogin/provider"
	"github.com/hashicorp/oauthlogin/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
base_url: https://app.example.com/
providers:
  - name: github
    client_id: id
    client_secret: secret
    redirect_url: https://app.example.com/oauth2/callback
    auth_url: https://github.com/login/oauth/authorize
    token_url: https://github.com/login/oauth/access_token
    scopes: [read:user]
handlers:
  - kind: log
    context: "*"
  - kind: redirect
    context: signup
    priority: 2
    options:
      url: /welcome
`

func TestCheckCmd(t *testing.T) {
	assert, require := assert.New(t), require.New(t)
	path := filepath.Join(t.TempDir(), "oauthlogin.yaml")
	require.NoError(os.WriteFile(path, []byte(testConfig), 0o600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"check", "--config", path})
	require.NoError(cmd.Execute())
	assert.Contains(out.String(), "provider github (oauth2)")
	assert.Contains(out.String(), "handler log context=* priority=-")
	assert.Contains(out.String(), "handler redirect context=signup priority=2")

	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"check", "--config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(cmd.Execute())
}

func TestNewServer(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	tp := provider.StartTestProvider(t)
	tp.SetClientCreds("id", "secret")
	pc := tp.ProviderConfig("https://app.example.com/login/callback")

	c := config.Default()
	c.BaseURL = "https://app.example.com/"
	c.Segment = "login"
	c.Providers = []config.Provider{{
		Name:         "test",
		ClientID:     pc.ClientId,
		ClientSecret: string(pc.ClientSecret),
		RedirectURL:  pc.RedirectUrl,
		AuthURL:      pc.AuthUrl,
		TokenURL:     pc.TokenUrl,
		Scopes:       []string{"email"},
		ProviderCA:   tp.CACert(),
	}}
	c.Handlers = []handler.Descriptor{{Kind: handler.KindLog, Context: handler.GlobalContext}}
	require.NoError(c.Validate())

	h, done, err := newServer(c, session.NewMemoryStore(), hclog.NewNullLogger())
	require.NoError(err)
	defer done()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(http.StatusOK, rec.Code)
	assert.Contains(rec.Body.String(), "/login/authenticate?provider=test&scope[]=")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login/authenticate?provider=test&scope[]=", nil))
	assert.Equal(http.StatusFound, rec.Code)
	assert.Contains(rec.Header().Get("Location"), tp.Addr()+"/authorize")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/elsewhere", nil))
	assert.Equal(http.StatusNotFound, rec.Code)
}

func TestSweep(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweep(ctx, session.NewMemoryStore(), time.Millisecond, hclog.NewNullLogger())
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sweep didn't stop")
	}
}
