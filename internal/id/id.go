// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package id

import (
	"encoding/base64"
	"fmt"

	"github.com/hashicorp/go-uuid"
)

// randomBytes is the amount of entropy in every generated id.
const randomBytes = 16

// EncodedLen is the length of a generated id without its prefix.
var EncodedLen = base64.RawURLEncoding.EncodedLen(randomBytes)

// New generates a url-safe random ID with an optional prefix. The ID is
// suitable for a CSRF state token or a browser session id.
func New(optionalPrefix string) (string, error) {
	const op = "id.New"
	b, err := uuid.GenerateRandomBytes(randomBytes)
	if err != nil {
		return "", fmt.Errorf("%s: unable to generate id: %w", op, err)
	}
	id := base64.RawURLEncoding.EncodeToString(b)
	switch {
	case optionalPrefix != "":
		return fmt.Sprintf("%s_%s", optionalPrefix, id), nil
	default:
		return id, nil
	}
}
