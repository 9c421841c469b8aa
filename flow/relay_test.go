// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package flow

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/oauthlogin/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Callback_RelayStripPrefix(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	env := newTestEnv(t, []handler.Descriptor{record("a", handler.GlobalContext, nil)})
	h := http.StripPrefix("/app", env.ctl.Handler())

	form := url.Values{"state": {"st_x"}, "code": {"abc"}}
	req := httptest.NewRequest(http.MethodPost, "/app/oauth2/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(http.StatusOK, rec.Code)

	target := parseRelayTarget(t, rec.Body.String())
	assert.Equal("/app/oauth2/callback", target.Path)
	assert.Equal("st_x", target.Query().Get("state"))
	assert.Equal("abc", target.Query().Get("code"))
}

func TestRequestPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		requestURI string
		path       string
		want       string
	}{
		{"request-uri", "/app/oauth2/callback?x=1", "/oauth2/callback", "/app/oauth2/callback"},
		{"no-request-uri", "", "/oauth2/callback", "/oauth2/callback"},
		{"bad-request-uri", "::", "/oauth2/callback", "/oauth2/callback"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := &http.Request{RequestURI: tt.requestURI, URL: &url.URL{Path: tt.path}}
			assert.Equal(t, tt.want, requestPath(r))
		})
	}
}

type brokenWriter struct {
	header http.Header
}

func (w *brokenWriter) Header() http.Header       { return w.header }
func (w *brokenWriter) WriteHeader(int)           {}
func (w *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestController_relayResponse_WriteError(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	env := newTestEnv(t, []handler.Descriptor{record("a", handler.GlobalContext, nil)})
	var buf bytes.Buffer
	env.ctl.logger = hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Error})

	req := callbackPOST("", url.Values{"state": {"st_x"}, "code": {"abc"}}, nil)
	require.NoError(t, req.ParseForm())
	w := &brokenWriter{header: http.Header{}}
	env.ctl.relayResponse(req).ServeHTTP(w, req)

	assert.Equal("no-store", w.Header().Get("Cache-Control"))
	assert.Contains(buf.String(), "unable to render relay page")
	assert.Contains(buf.String(), "connection reset")
}
