// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import "errors"

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNilParameter     = errors.New("nil parameter")
	ErrNoHandlers       = errors.New("no token handlers are registered")
	ErrUnknownKind      = errors.New("unknown token handler kind")
	ErrDuplicateKind    = errors.New("duplicate token handler kind")
)
