// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads the accounts service configuration from a YAML
// file, command-line flags and the environment, in that order.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/accounts/internal/logging"
	"github.com/holomush/accounts/internal/xdg"
)

// Default values for configuration keys.
const (
	DefaultAddr            = ":3000"
	DefaultMetricsAddr     = "127.0.0.1:9100"
	DefaultLogFormat       = "json"
	DefaultLogLevel        = "info"
	DefaultTokenTTL        = time.Hour
	DefaultTokenIssuer     = "accounts"
	DefaultPasswordHasher  = "bcrypt"
	DefaultRateLimit       = 10
	DefaultRateLimitWindow = time.Minute
	DefaultShutdownTimeout = 10 * time.Second
)

// Config is the runtime configuration of the accounts service. Keys are
// shared by the YAML file and the flags; the env tags name the variables
// that override both.
type Config struct {
	Addr            string        `koanf:"addr" env:"ACCOUNTS_ADDR" yaml:"addr"`
	MetricsAddr     string        `koanf:"metrics-addr" yaml:"metrics-addr"`
	DatabaseURL     string        `koanf:"database-url" env:"DATABASE_URL" yaml:"database-url"`
	LogFormat       string        `koanf:"log-format" yaml:"log-format"`
	LogLevel        string        `koanf:"log-level" env:"LOG_LEVEL" yaml:"log-level"`
	JWTSecret       string        `koanf:"jwt-secret" env:"JWT_SECRET" yaml:"jwt-secret"`
	TokenTTL        time.Duration `koanf:"token-ttl" yaml:"token-ttl"`
	TokenIssuer     string        `koanf:"token-issuer" yaml:"token-issuer"`
	PasswordHasher  string        `koanf:"password-hasher" yaml:"password-hasher"`
	RateLimit       int           `koanf:"rate-limit" yaml:"rate-limit"`
	RateLimitWindow time.Duration `koanf:"rate-limit-window" yaml:"rate-limit-window"`
	RedisURL        string        `koanf:"redis-url" env:"REDIS_URL" yaml:"redis-url"`
	AutoMigrate     bool          `koanf:"auto-migrate" yaml:"auto-migrate"`
	ShutdownTimeout time.Duration `koanf:"shutdown-timeout" yaml:"shutdown-timeout"`
	CORSOrigins     string        `koanf:"cors-origins" env:"CORS_ORIGINS" yaml:"cors-origins"`
}

// Default returns a Config holding every default value.
func Default() *Config {
	return &Config{
		Addr:            DefaultAddr,
		MetricsAddr:     DefaultMetricsAddr,
		LogFormat:       DefaultLogFormat,
		LogLevel:        DefaultLogLevel,
		TokenTTL:        DefaultTokenTTL,
		TokenIssuer:     DefaultTokenIssuer,
		PasswordHasher:  DefaultPasswordHasher,
		RateLimit:       DefaultRateLimit,
		RateLimitWindow: DefaultRateLimitWindow,
		AutoMigrate:     true,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// RegisterFlags defines the serve flags on fs. The JWT secret has no flag
// so it never shows up in a process listing.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("addr", DefaultAddr, "API listen address")
	fs.String("metrics-addr", DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("database-url", "", "PostgreSQL connection URL (env DATABASE_URL)")
	fs.String("log-format", DefaultLogFormat, "log format (json or text)")
	fs.String("log-level", DefaultLogLevel, "minimum log level (debug, info, warn or error)")
	fs.Duration("token-ttl", DefaultTokenTTL, "access token lifetime")
	fs.String("token-issuer", DefaultTokenIssuer, "access token issuer claim")
	fs.String("password-hasher", DefaultPasswordHasher, "password hasher (bcrypt or argon2id)")
	fs.Int("rate-limit", DefaultRateLimit, "login/register attempts per client per window (0 = unlimited)")
	fs.Duration("rate-limit-window", DefaultRateLimitWindow, "rate limit window")
	fs.String("redis-url", "", "Redis URL for a shared rate limiter (empty = in-process)")
	fs.Bool("auto-migrate", true, "apply pending migrations on startup")
	fs.Duration("shutdown-timeout", DefaultShutdownTimeout, "graceful shutdown timeout")
	fs.String("cors-origins", "", "comma-separated origins allowed by CORS (empty = CORS disabled, * = any)")
}

// Load builds a Config. path may be empty. Flags that were not changed
// only fill keys the file did not set.
func Load(flags *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "unmarshal").Wrap(err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "env").Wrap(err)
	}

	return cfg, nil
}

// ResolvePath returns explicit when set. Otherwise it returns the XDG
// default config file if it exists, or "".
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	path, err := xdg.ConfigFile()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
	}
	return path, nil
}

// Validate checks that the configuration is usable by serve.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr", "addr is required")
	case c.DatabaseURL == "":
		return invalid("database-url", "database URL is required (DATABASE_URL)")
	case c.JWTSecret == "":
		return invalid("jwt-secret", "JWT secret is required (JWT_SECRET)")
	case c.LogFormat != "json" && c.LogFormat != "text":
		return invalid("log-format", "log-format must be 'json' or 'text', got %q", c.LogFormat)
	case !validLevel(c.LogLevel):
		return invalid("log-level", "log-level must be debug, info, warn or error, got %q", c.LogLevel)
	case c.PasswordHasher != "bcrypt" && c.PasswordHasher != "argon2id":
		return invalid("password-hasher", "password-hasher must be 'bcrypt' or 'argon2id', got %q", c.PasswordHasher)
	case c.TokenTTL <= 0:
		return invalid("token-ttl", "token-ttl must be positive, got %s", c.TokenTTL)
	case c.RateLimit < 0:
		return invalid("rate-limit", "rate-limit must not be negative, got %d", c.RateLimit)
	case c.RateLimit > 0 && c.RateLimitWindow <= 0:
		return invalid("rate-limit-window", "rate-limit-window must be positive, got %s", c.RateLimitWindow)
	case c.ShutdownTimeout <= 0:
		return invalid("shutdown-timeout", "shutdown-timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// Origins splits CORSOrigins into its non-empty entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.JWTSecret != "" {
		out.JWTSecret = redacted
	}
	if out.DatabaseURL != "" {
		out.DatabaseURL = redactURL(out.DatabaseURL)
	}
	if out.RedisURL != "" {
		out.RedisURL = redactURL(out.RedisURL)
	}
	return &out
}

func validLevel(name string) bool {
	_, err := logging.ParseLevel(name)
	return err == nil
}

func invalid(field, format string, args ...any) error {
	return oops.Code("CONFIG_INVALID").With("field", field).Errorf(format, args...)
}
