// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package auth authenticates directory users.
//
// # Credentials
//
// Passwords are stored as hashes produced by a PasswordHasher. BcryptHasher
// is the default; Argon2idHasher can be selected instead. Either hasher
// verifies hashes written by the other and reports them through
// NeedsUpgrade, so Login rehashes them on the next successful sign-in.
//
// # Tokens
//
// A successful Login returns a signed JWT from a TokenIssuer. The token is
// the whole credential: there is no server-side session. ValidateSession
// resolves verified claims back to the current user record.
package auth
