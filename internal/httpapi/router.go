// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package httpapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/internal/observability"
	"github.com/holomush/accounts/internal/user"
)

// AuthService is the part of *auth.Service the API uses.
type AuthService interface {
	Register(ctx context.Context, in user.CreateInput) (*user.Public, error)
	Login(ctx context.Context, email, password string) (*auth.AccessToken, error)
	ValidateSession(ctx context.Context, claims *auth.Claims) (*user.User, error)
	HashPassword(plain string) (string, error)
}

// UserDirectory is the part of *user.Service the API uses.
type UserDirectory interface {
	CreateUser(ctx context.Context, in user.CreateInput) (*user.User, error)
	FindAllUsers(ctx context.Context) ([]*user.User, error)
	FindUserByID(ctx context.Context, id int64) (*user.User, error)
	UpdateUser(ctx context.Context, id int64, p user.Patch) (*user.User, error)
	RemoveUser(ctx context.Context, id int64) error
}

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Options configures the router.
type Options struct {
	Auth   AuthService
	Users  UserDirectory
	Tokens TokenVerifier

	// Limiter throttles register and login. Nil or a RateLimit <= 0
	// disables throttling.
	Limiter         Limiter
	RateLimit       int
	RateLimitWindow time.Duration

	// CORSOrigins enables CORS for the listed origins. "*" allows any.
	CORSOrigins []string

	Metrics *observability.Metrics
	Logger  *slog.Logger
}

type handler struct {
	auth    AuthService
	users   UserDirectory
	tokens  TokenVerifier
	limiter Limiter
	limit   int
	window  time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
	bodies  *bodyValidator
}

// NewRouter builds the gin engine serving the API.
func NewRouter(opts Options) (*gin.Engine, error) {
	if opts.Auth == nil || opts.Users == nil || opts.Tokens == nil {
		return nil, oops.Code("HTTPAPI_CONFIG_INVALID").Errorf("auth, users and tokens are required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	bodies, err := newBodyValidator()
	if err != nil {
		return nil, err
	}

	h := &handler{
		auth:    opts.Auth,
		users:   opts.Users,
		tokens:  opts.Tokens,
		limiter: opts.Limiter,
		limit:   opts.RateLimit,
		window:  opts.RateLimitWindow,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		bodies:  bodies,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, oops.Wrapf(err, "set trusted proxies")
	}

	r.Use(requestID(), h.observe(), h.recovery())
	if len(opts.CORSOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = opts.CORSOrigins
		cfg.AddAllowHeaders("Authorization", HeaderRequestID)
		cfg.AddExposeHeaders(HeaderRequestID)
		if err := cfg.Validate(); err != nil {
			return nil, oops.Code("HTTPAPI_CONFIG_INVALID").With("origins", opts.CORSOrigins).Wrap(err)
		}
		r.Use(cors.New(cfg))
	}
	r.NoRoute(h.noRoute)

	authGroup := r.Group("/auth")
	authGroup.POST("/register", h.rateLimit(opRegister), h.register)
	authGroup.POST("/login", h.rateLimit(opLogin), h.login)
	authGroup.GET("/profile", h.requireAuth, h.profile)
	authGroup.GET("/admin/test", moduleCheck("Auth module is working!"))

	users := r.Group("/users")
	users.POST("", h.createUser)
	users.GET("", h.listUsers)
	users.GET("/admin/test", moduleCheck("Users module is working!"))
	users.GET("/:id", h.getUser)
	users.PATCH("/:id", h.updateUser)
	users.DELETE("/:id", h.deleteUser)

	return r, nil
}
