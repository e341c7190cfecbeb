// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/observability"
	"github.com/holomush/accounts/internal/user"
)

// Auth attempt operations recorded in metrics.
const (
	opRegister = "register"
	opLogin    = "login"
)

const maxBodyBytes = 1 << 20

func (h *handler) register(c *gin.Context) {
	var in user.CreateInput
	if !h.bind(c, SchemaCreateUser, &in) {
		return
	}

	pub, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		h.metrics.RecordAuthAttempt(opRegister, observability.ResultFailure)
		fail(c, h.logger, err)
		return
	}
	h.metrics.RecordAuthAttempt(opRegister, observability.ResultSuccess)
	c.JSON(http.StatusCreated, pub)
}

func (h *handler) login(c *gin.Context) {
	var req LoginRequest
	if !h.bind(c, SchemaLogin, &req) {
		return
	}

	tok, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.RecordAuthAttempt(opLogin, observability.ResultFailure)
		fail(c, h.logger, err)
		return
	}
	h.metrics.RecordAuthAttempt(opLogin, observability.ResultSuccess)
	c.JSON(http.StatusOK, tok)
}

func (h *handler) profile(c *gin.Context) {
	u, ok := sessionUser(c)
	if !ok {
		fail(c, h.logger, oops.Errorf("profile reached without a session user"))
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

func (h *handler) createUser(c *gin.Context) {
	var in user.CreateInput
	if !h.bind(c, SchemaCreateUser, &in) {
		return
	}
	if in.Password != nil {
		hash, err := h.auth.HashPassword(*in.Password)
		if err != nil {
			fail(c, h.logger, err)
			return
		}
		in.Password = &hash
	}

	u, err := h.users.CreateUser(c.Request.Context(), in)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, u.Public())
}

func (h *handler) listUsers(c *gin.Context) {
	users, err := h.users.FindAllUsers(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.PublicList(users))
}

func (h *handler) getUser(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	u, err := h.users.FindUserByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

func (h *handler) updateUser(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	var p user.Patch
	if !h.bind(c, SchemaUpdateUser, &p) {
		return
	}
	if p.Password != nil {
		hash, err := h.auth.HashPassword(*p.Password)
		if err != nil {
			fail(c, h.logger, err)
			return
		}
		p.Password = &hash
	}

	u, err := h.users.UpdateUser(c.Request.Context(), id, p)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

func (h *handler) deleteUser(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	if err := h.users.RemoveUser(c.Request.Context(), id); err != nil {
		fail(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func moduleCheck(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, message)
	}
}

func (h *handler) noRoute(c *gin.Context) {
	fail(c, h.logger, oops.Code(CodeRouteNotFound).
		Errorf("Cannot %s %s", c.Request.Method, c.Request.URL.Path))
}

// bind reads the request body and decodes it through the named schema.
// On failure it writes the 400 response and returns false.
func (h *handler) bind(c *gin.Context, schema string, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		fail(c, h.logger, errInvalidRequest("unreadable request body"))
		return false
	}
	if err := h.bodies.decode(schema, body, dst); err != nil {
		fail(c, h.logger, err)
		return false
	}
	return true
}

// userID parses the :id path parameter.
func (h *handler) userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, h.logger, oops.Code(CodeRequestInvalid).
			With("id", c.Param("id")).
			Errorf("Validation failed (numeric string is expected)"))
		return 0, false
	}
	return id, true
}
