// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package flow

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackURL(t *testing.T) {
	t.Parallel()
	sameSite, err := SameSite(testBaseURL)
	require.NoError(t, err)

	tests := []struct {
		name    string
		param   string
		header  string
		ajax    bool
		referer string
		want    string
	}{
		{"param-wins", "/from-param", "/from-header", true, "/from-referer", "/from-param"},
		{"ajax-header", "", "/from-header", true, "/from-referer", "/from-header"},
		{"header-ignored-without-ajax", "", "/from-header", false, "/from-referer", "/from-referer"},
		{"referer", "", "", false, "https://app.example.com/page", "https://app.example.com/page"},
		{"none", "", "", false, "", testBaseURL},
		{"param-not-same-site", "https://evil.example.org/", "", false, "/from-referer", testBaseURL},
		{"referer-not-same-site", "", "", true, "https://evil.example.org/", testBaseURL},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			target := "/oauth2/authenticate"
			if tt.param != "" {
				target += "?" + url.Values{BackURLParam: {tt.param}}.Encode()
			}
			r := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				r.Header.Set(BackURLHeader, tt.header)
			}
			if tt.ajax {
				r.Header.Set("X-Requested-With", "XMLHttpRequest")
			}
			if tt.referer != "" {
				r.Header.Set("Referer", tt.referer)
			}
			assert.Equal(t, tt.want, BackURL(r, testBaseURL, sameSite))
		})
	}
	t.Run("param-in-body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/oauth2/authenticate", strings.NewReader(url.Values{BackURLParam: {"/from-body"}}.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		assert.Equal(t, "/from-body", BackURL(r, testBaseURL, sameSite))
	})
}

func TestSameSite(t *testing.T) {
	t.Parallel()
	sameSite, err := SameSite("https://app.example.co.uk/")
	require.NoError(t, err)

	tests := []struct {
		candidate string
		want      bool
	}{
		{"/", true},
		{"/dashboard?tab=1#top", true},
		{"https://app.example.co.uk/page", true},
		{"https://www.example.co.uk/page", true},
		{"https://APP.EXAMPLE.CO.UK/page", true},
		{"http://app.example.co.uk/page", false},
		{"https://other.co.uk/page", false},
		{"https://example.co.uk.evil.com/", false},
		{"//evil.com/", false},
		{"/\\evil.com/", false},
		{"relative/path", false},
		{"javascript:alert(1)", false},
		{"https://user@app.example.co.uk/", false},
		{"https://app.example.co.uk/\r\nSet-Cookie: x", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sameSite(tt.candidate), tt.candidate)
	}

	_, err = SameSite("/relative")
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = SameSite("ftp://app.example.com")
	assert.ErrorIs(t, err, ErrInvalidParameter)

	local, err := SameSite("http://localhost:8080")
	require.NoError(t, err)
	assert.True(t, local("http://localhost:9000/x"))
	assert.False(t, local("http://127.0.0.1:8080/x"))
}
