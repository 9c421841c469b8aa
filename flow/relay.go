// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package flow

import (
	"html/template"
	"net/http"
	"net/url"
)

var relayTmpl = template.Must(template.New("relay").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="0;url={{.}}">
<title>Redirecting</title>
</head>
<body>
<script>window.location.replace({{.}});</script>
<p><a id="continue" href="{{.}}">Continue</a></p>
</body>
</html>`))

// relayResponse renders a page which sends the browser back to the same
// path with the posted code and state as query parameters. The path is taken
// from the request line, so the page still points at the callback when the
// controller is mounted under http.StripPrefix.
func (c *Controller) relayResponse(r *http.Request) http.Handler {
	target := url.URL{
		Path: requestPath(r),
		RawQuery: url.Values{
			"code":  {r.PostForm.Get("code")},
			"state": {r.PostForm.Get("state")},
		}.Encode(),
	}
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.WriteHeader(http.StatusOK)
		if err := relayTmpl.Execute(w, target.String()); err != nil {
			c.logger.Error("unable to render relay page", "error", err)
		}
	})
}

// requestPath is the path the client requested, before any prefix was
// stripped from r.URL.
func requestPath(r *http.Request) string {
	if r.RequestURI != "" {
		if u, err := url.ParseRequestURI(r.RequestURI); err == nil && u.Path != "" {
			return u.Path
		}
	}
	return r.URL.Path
}
