// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Command oauthlogin serves the oauth2 authorization code login flow for the
// providers and token handlers named in its configuration.
package main

import (
	"os"
)

// version can be set during build with -ldflags
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
