// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package user

import "errors"

// Sentinel errors returned by Repository implementations.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrDuplicateUsername = errors.New("duplicate username")
)

// Error codes attached to errors returned by Service.
const (
	CodeNotFound       = "USER_NOT_FOUND"
	CodeEmailExists    = "USER_EMAIL_EXISTS"
	CodeUsernameExists = "USER_USERNAME_EXISTS"
	CodeEmailInUse     = "USER_EMAIL_IN_USE"
	CodeUsernameInUse  = "USER_USERNAME_IN_USE"
	CodeStoreFailed    = "USER_STORE_FAILED"
)
