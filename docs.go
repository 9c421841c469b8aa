// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// oauthlogin embeds an OAuth2 authorization code login flow in a web
// application.
//
// The flow is split across packages:
//
//   - provider: OAuth2 and OIDC identity provider clients, and a registry to
//     look them up by name
//   - session: storage for the in-flight login of each browser session
//   - handler: token handlers, selected by the login's context and ordered
//     by priority, which receive the access token
//   - flow: the authenticate and callback endpoints
//   - config: YAML and environment configuration for the oauthlogin command
package oauthlogin
