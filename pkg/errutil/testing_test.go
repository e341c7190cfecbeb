// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/holomush/accounts/pkg/errutil"
)

func TestAssertErrorCode_WrappedError(t *testing.T) {
	err := oops.With("addr", ":3000").Wrapf(oops.Code("HTTP_LISTEN_FAILED").Errorf("bind"), "start api")
	errutil.AssertErrorCode(t, err, "HTTP_LISTEN_FAILED")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.Code("CONFIG_INVALID").With("field", "addr").Errorf("addr is required")
	errutil.AssertErrorContext(t, err, "field", "addr")
}
