// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/internal/user"
	"github.com/holomush/accounts/pkg/errutil"
)

// Error codes produced by the API layer itself.
const (
	CodeRequestInvalid = "REQUEST_INVALID"
	CodeRateLimited    = "RATE_LIMITED"
	CodeRouteNotFound  = "ROUTE_NOT_FOUND"
	CodeInternal       = "INTERNAL_ERROR"
)

const internalMessage = "internal server error"

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps an error code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case user.CodeEmailExists, user.CodeUsernameExists,
		user.CodeEmailInUse, user.CodeUsernameInUse,
		auth.CodePasswordRequired:
		return http.StatusConflict
	case user.CodeNotFound, CodeRouteNotFound:
		return http.StatusNotFound
	case auth.CodeInvalidCredentials, auth.CodeInvalidToken,
		auth.CodeTokenExpired, auth.CodeMissingToken:
		return http.StatusUnauthorized
	case CodeRequestInvalid, auth.CodePasswordTooLong, auth.CodeEmptyPassword:
		return http.StatusBadRequest
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// fail aborts the request with the JSON error body for err. Server errors
// are logged with their context and answered with a generic message.
func fail(c *gin.Context, logger *slog.Logger, err error) {
	code := errutil.Code(err)
	status := statusFor(code)
	body := errorBody{Error: err.Error(), Code: code}

	if status == http.StatusInternalServerError {
		errutil.LogError(c.Request.Context(), logger, "request failed", err,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		body = errorBody{Error: internalMessage, Code: CodeInternal}
	}

	c.AbortWithStatusJSON(status, body)
}

func errInvalidRequest(format string, args ...any) error {
	return oops.Code(CodeRequestInvalid).Errorf(format, args...)
}
