// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package httpapi serves the accounts REST API.
//
// Routes:
//
//	POST   /auth/register   create a user with a password
//	POST   /auth/login      exchange credentials for an access token
//	GET    /auth/profile    current user (bearer token)
//	POST   /users           create a user
//	GET    /users           list users
//	GET    /users/:id       fetch a user
//	PATCH  /users/:id       partial update
//	DELETE /users/:id       remove a user
//
// Request bodies are checked against JSON Schemas reflected from the Go
// types before they are decoded. Failures are written as
// {"error": <message>, "code": <code>} with the status chosen by statusFor.
// Responses never carry a password hash.
package httpapi
