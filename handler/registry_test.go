// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/hashicorp/oauthlogin/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func nopHandler(context.Context, *oauth2.Token, provider.Provider) (http.Handler, error) {
	return nil, nil
}

func nopFactory(Descriptor) (TokenHandler, error) {
	return TokenHandlerFunc(nopHandler), nil
}

func TestResolve(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		descriptors []Descriptor
		context     string
		want        []Descriptor
		wantErr     error
	}{
		{
			name:    "no-descriptors",
			context: "login",
			wantErr: ErrNoHandlers,
		},
		{
			name: "mixed-priorities",
			descriptors: []Descriptor{
				{Kind: "a", Context: GlobalContext, Priority: Priority(5)},
				{Kind: "b", Context: "login", Priority: Priority(1)},
				{Kind: "c", Context: GlobalContext},
			},
			context: "login",
			want: []Descriptor{
				{Kind: "b", Context: "login", Priority: Priority(1)},
				{Kind: "a", Context: GlobalContext, Priority: Priority(5)},
				{Kind: "c", Context: GlobalContext},
			},
		},
		{
			name: "other-context-filtered",
			descriptors: []Descriptor{
				{Kind: "a", Context: "signup", Priority: Priority(0)},
				{Kind: "b", Context: GlobalContext, Priority: Priority(2)},
				{Kind: "c", Context: "login", Priority: Priority(1)},
			},
			context: "login",
			want: []Descriptor{
				{Kind: "c", Context: "login", Priority: Priority(1)},
				{Kind: "b", Context: GlobalContext, Priority: Priority(2)},
			},
		},
		{
			name: "absent-context-only-global",
			descriptors: []Descriptor{
				{Kind: "a", Context: "login"},
				{Kind: "b", Context: GlobalContext},
				{Kind: "c", Context: ""},
			},
			want: []Descriptor{
				{Kind: "b", Context: GlobalContext},
			},
		},
		{
			name: "nothing-eligible",
			descriptors: []Descriptor{
				{Kind: "a", Context: "signup"},
			},
			context: "login",
			want:    []Descriptor{},
		},
		{
			name: "unprioritized-keep-input-order",
			descriptors: []Descriptor{
				{Kind: "a", Context: GlobalContext},
				{Kind: "b", Context: GlobalContext},
				{Kind: "c", Context: GlobalContext},
			},
			context: "login",
			want: []Descriptor{
				{Kind: "a", Context: GlobalContext},
				{Kind: "b", Context: GlobalContext},
				{Kind: "c", Context: GlobalContext},
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			got, err := Resolve(tt.descriptors, tt.context)
			if tt.wantErr != nil {
				require.Error(err)
				assert.ErrorIs(err, tt.wantErr)
				assert.Nil(got)
				return
			}
			require.NoError(err)
			assert.Equal(tt.want, got)
		})
	}
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	r := NewRegistry()

	require.NoError(r.Register("nop", nopFactory))
	assert.True(r.Has("nop"))
	assert.False(r.Has("other"))

	err := r.Register("nop", nopFactory)
	assert.ErrorIs(err, ErrDuplicateKind)

	err = r.Register("", nopFactory)
	assert.ErrorIs(err, ErrInvalidParameter)

	err = r.Register("nil", nil)
	assert.ErrorIs(err, ErrNilParameter)
}

func TestRegistry_New(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	r := NewRegistry()
	factoryErr := errors.New("bad options")
	require.NoError(r.Register("nop", nopFactory))
	require.NoError(r.Register("broken", func(Descriptor) (TokenHandler, error) { return nil, factoryErr }))
	require.NoError(r.Register("empty", func(Descriptor) (TokenHandler, error) { return nil, nil }))

	h, err := r.New(Descriptor{Kind: "nop", Context: GlobalContext})
	require.NoError(err)
	assert.NotNil(h)

	_, err = r.New(Descriptor{Kind: "missing"})
	assert.ErrorIs(err, ErrUnknownKind)

	_, err = r.New(Descriptor{Kind: "broken"})
	assert.ErrorIs(err, factoryErr)

	_, err = r.New(Descriptor{Kind: "empty"})
	assert.ErrorIs(err, ErrNilParameter)
}

func TestRegistry_Handlers(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	r := NewRegistry()
	var order []string
	require.NoError(r.Register("record", func(d Descriptor) (TokenHandler, error) {
		name := d.Options["name"]
		return TokenHandlerFunc(func(context.Context, *oauth2.Token, provider.Provider) (http.Handler, error) {
			order = append(order, name)
			return nil, nil
		}), nil
	}))

	handlers, err := r.Handlers([]Descriptor{
		{Kind: "record", Context: GlobalContext, Priority: Priority(5), Options: map[string]string{"name": "second"}},
		{Kind: "record", Context: "login", Priority: Priority(1), Options: map[string]string{"name": "first"}},
		{Kind: "record", Context: "signup", Options: map[string]string{"name": "skipped"}},
	}, "login")
	require.NoError(err)
	require.Len(handlers, 2)
	for _, h := range handlers {
		_, err := h.HandleToken(context.Background(), &oauth2.Token{}, nil)
		require.NoError(err)
	}
	assert.Equal([]string{"first", "second"}, order)

	_, err = r.Handlers(nil, "login")
	assert.ErrorIs(err, ErrNoHandlers)

	_, err = r.Handlers([]Descriptor{{Kind: "missing", Context: GlobalContext}}, "login")
	assert.ErrorIs(err, ErrUnknownKind)
}
