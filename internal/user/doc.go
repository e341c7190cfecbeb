// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package user provides the user directory: the User record, its storage
// contract, and the service that enforces email and username uniqueness.
//
// Storage implementations live in subpackages (see user/postgres). Callers
// outside this package should go through Service rather than a Repository
// so that uniqueness errors carry consistent codes and messages.
package user
