// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package httpapi

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/internal/logging"
	"github.com/holomush/accounts/internal/user"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

const tracerName = "github.com/holomush/accounts/internal/httpapi"

// Keys under which requireAuth stores the session on the gin context.
const (
	ctxKeyClaims = "auth.claims"
	ctxKeyUser   = "auth.user"
)

// unmatchedRoute labels requests that hit no route.
const unmatchedRoute = "unmatched"

// requestID assigns a ULID to each request unless the client sent one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := ulid.ParseStrict(id); err != nil {
			id = ulid.Make().String()
		}
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// observe wraps each request in a server span, then records the access log
// line and the request metrics.
func (h *handler) observe() gin.HandlerFunc {
	tracer := otel.Tracer(tracerName)
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		h.metrics.ObserveRequest(c.Request.Method, route, status, elapsed)
		h.logger.InfoContext(ctx, "http request",
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// recovery turns a panic into a logged 500 response.
func (h *handler) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		err := oops.Code(CodeInternal).
			With("panic", fmt.Sprint(rec)).
			Errorf("panic serving %s %s", c.Request.Method, c.Request.URL.Path)
		fail(c, h.logger, err)
	})
}

// requireAuth resolves the bearer token to the current user. The verified
// claims and user are stored on the gin context.
func (h *handler) requireAuth(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		fail(c, h.logger, oops.Code(auth.CodeMissingToken).Errorf("Unauthorized"))
		return
	}

	claims, err := h.tokens.Verify(token)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	u, err := h.auth.ValidateSession(c.Request.Context(), claims)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	c.Set(ctxKeyClaims, claims)
	c.Set(ctxKeyUser, u)
	c.Next()
}

// sessionUser returns the user stored by requireAuth.
func sessionUser(c *gin.Context) (*user.User, bool) {
	v, ok := c.Get(ctxKeyUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*user.User)
	return u, ok && u != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// rateLimit throttles a route per client IP. scope keeps the counters of
// different routes apart.
func (h *handler) rateLimit(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.limiter == nil || h.limit <= 0 {
			c.Next()
			return
		}

		key := scope + ":ip:" + c.ClientIP()
		d := h.limiter.Allow(c.Request.Context(), key, h.limit, h.window)
		c.Header("X-RateLimit-Limit", strconv.Itoa(h.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(h.limit-d.Count, 0)))

		if !d.Allowed {
			h.metrics.RecordRateLimited(scope)
			if !d.Reset.IsZero() {
				wait := math.Ceil(time.Until(d.Reset).Seconds())
				c.Header("Retry-After", strconv.Itoa(max(int(wait), 1)))
			}
			fail(c, h.logger, oops.Code(CodeRateLimited).With("scope", scope).Errorf("Too many requests"))
			return
		}
		c.Next()
	}
}
