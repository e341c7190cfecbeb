// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/user"
)

// Token defaults.
const (
	DefaultTokenTTL    = time.Hour
	DefaultTokenIssuer = "accounts"
)

// AccessToken is the body returned by a successful login.
type AccessToken struct {
	AccessToken string `json:"accessToken"`
}

// Claims are the JWT claims carried by an access token. Subject holds the
// decimal user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, oops.Code(CodeInvalidToken).With("subject", c.Subject).Wrap(err)
	}
	return id, nil
}

// TokenIssuer signs and verifies access tokens.
type TokenIssuer interface {
	Issue(u *user.User) (string, error)
	Verify(token string) (*Claims, error)
}

// JWTConfig configures a JWTIssuer.
type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// JWTIssuer issues HS256-signed JWTs.
type JWTIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer creates a JWTIssuer. The secret is required; issuer and TTL
// fall back to DefaultTokenIssuer and DefaultTokenTTL.
func NewJWTIssuer(cfg JWTConfig) (*JWTIssuer, error) {
	if cfg.Secret == "" {
		return nil, oops.Code(CodeTokenConfig).Errorf("token secret cannot be empty")
	}
	if cfg.TTL < 0 {
		return nil, oops.Code(CodeTokenConfig).With("ttl", cfg.TTL.String()).Errorf("token TTL must be positive")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultTokenIssuer
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTokenTTL
	}
	return &JWTIssuer{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// Issue signs a token for u carrying {email, sub=id}.
func (j *JWTIssuer) Issue(u *user.User) (string, error) {
	now := j.now()
	claims := Claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			ID:        ulid.Make().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", oops.Code(CodeTokenSignFailed).With("user_id", u.ID).Wrap(err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and issuer of token and returns its
// claims.
func (j *JWTIssuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return j.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(j.issuer),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, oops.Code(CodeTokenExpired).Errorf("Token expired")
		}
		return nil, errInvalidToken(err.Error())
	}
	return claims, nil
}
