// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil_test

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/holomush/accounts/pkg/errutil"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: errors.New("boom"), want: ""},
		{name: "oops without code", err: oops.Errorf("boom"), want: ""},
		{name: "coded", err: oops.Code("USER_NOT_FOUND").Errorf("missing"), want: "USER_NOT_FOUND"},
		{
			name: "context added by outer layer keeps inner code",
			err:  oops.With("operation", "lookup").Wrap(oops.Code("USER_STORE_FAILED").Errorf("down")),
			want: "USER_STORE_FAILED",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errutil.Code(tt.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	err := oops.Code("AUTH_INVALID_TOKEN").Errorf("Invalid token")
	assert.True(t, errutil.HasCode(err, "AUTH_INVALID_TOKEN"))
	assert.False(t, errutil.HasCode(err, "USER_NOT_FOUND"))
	assert.False(t, errutil.HasCode(nil, ""))
}
