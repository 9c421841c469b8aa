// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"errors"
)

var (
	ErrInvalidParameter          = errors.New("invalid parameter")
	ErrNilParameter              = errors.New("nil parameter")
	ErrInvalidCACert             = errors.New("invalid CA certificate")
	ErrInvalidIssuer             = errors.New("invalid issuer")
	ErrUnknownProvider           = errors.New("unknown provider")
	ErrDuplicateProvider         = errors.New("duplicate provider")
	ErrIdentityProvider          = errors.New("identity provider rejected the request")
	ErrIdTokenVerificationFailed = errors.New("id_token verification failed")
	ErrInvalidAudience           = errors.New("invalid audience")
)
