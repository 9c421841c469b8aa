// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		prefix  string
		wantLen int
	}{
		{
			name:    "valid",
			prefix:  "st",
			wantLen: EncodedLen + len("st_"),
		},
		{
			name:    "no-prefix",
			prefix:  "",
			wantLen: EncodedLen,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := New(tt.prefix)
			require.NoError(err)
			if tt.prefix != "" {
				assert.True(strings.HasPrefix(got, tt.prefix+"_"))
			}
			assert.Len(got, tt.wantLen)
			assert.NotContains(got, "+")
			assert.NotContains(got, "/")
		})
	}
	t.Run("unique", func(t *testing.T) {
		require := require.New(t)
		seen := map[string]bool{}
		for i := 0; i < 100; i++ {
			got, err := New("st")
			require.NoError(err)
			require.False(seen[got], "duplicate id %s", got)
			seen[got] = true
		}
	})
}
