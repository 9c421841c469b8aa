// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package flow

import "errors"

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNilParameter     = errors.New("nil parameter")

	// ErrNotFound is returned for authentication requests which don't name
	// a known provider or carry a malformed scope. The default ErrorHandler
	// responds to it with a 404.
	ErrNotFound = errors.New("not found")
)
