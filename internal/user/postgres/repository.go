// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package postgres implements user.Repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/user"
)

// Constraint names from migrations/000001_create_users.up.sql.
const (
	constraintEmail    = "users_email_key"
	constraintUsername = "users_username_key"
)

// Pool is the subset of *pgxpool.Pool used by Repository. pgxmock's pool
// satisfies it as well.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements user.Repository using PostgreSQL.
type Repository struct {
	pool Pool
}

// NewRepository creates a new Repository.
func NewRepository(pool Pool) *Repository {
	return &Repository{pool: pool}
}

const selectColumns = `
	id, name, username, email, password,
	address_street, address_suite, address_city, address_zipcode,
	address_geo_lat, address_geo_lng,
	phone, website,
	company_name, company_catch_phrase, company_bs,
	created_at, updated_at`

// Create stores a new user and fills in its ID and timestamps.
func (r *Repository) Create(ctx context.Context, u *user.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (
			name, username, email, password,
			address_street, address_suite, address_city, address_zipcode,
			address_geo_lat, address_geo_lng,
			phone, website,
			company_name, company_catch_phrase, company_bs
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`,
		u.Name, u.Username, u.Email, u.PasswordHash,
		u.Address.Street, u.Address.Suite, u.Address.City, u.Address.Zipcode,
		u.Address.Geo.Lat, u.Address.Geo.Lng,
		u.Phone, u.Website,
		u.Company.Name, u.Company.CatchPhrase, u.Company.BS,
	)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if dup := duplicateError(err); dup != nil {
			return dup
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", u.Username).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id).Wrap(user.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("id", id).
			Wrap(err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM users WHERE email = $1`, email)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("email", email).Wrap(user.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}
	return u, nil
}

// GetByUsername retrieves a user by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM users WHERE username = $1`, username)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("username", username).Wrap(user.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_USERNAME_FAILED").
			With("operation", "get user by username").
			With("username", username).
			Wrap(err)
	}
	return u, nil
}

// List returns all users ordered by ID.
func (r *Repository) List(ctx context.Context) ([]*user.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").With("operation", "list users").Wrap(err)
	}
	defer rows.Close()

	users := []*user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, oops.Code("USER_LIST_FAILED").With("operation", "scan user row").Wrap(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_LIST_FAILED").With("operation", "iterate users").Wrap(err)
	}
	return users, nil
}

// Update persists every mutable field of u.
func (r *Repository) Update(ctx context.Context, u *user.User) error {
	updatedAt := time.Now().UTC()
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET
			name = $2, username = $3, email = $4, password = $5,
			address_street = $6, address_suite = $7, address_city = $8, address_zipcode = $9,
			address_geo_lat = $10, address_geo_lng = $11,
			phone = $12, website = $13,
			company_name = $14, company_catch_phrase = $15, company_bs = $16,
			updated_at = $17
		WHERE id = $1
	`,
		u.ID,
		u.Name, u.Username, u.Email, u.PasswordHash,
		u.Address.Street, u.Address.Suite, u.Address.City, u.Address.Zipcode,
		u.Address.Geo.Lat, u.Address.Geo.Lng,
		u.Phone, u.Website,
		u.Company.Name, u.Company.CatchPhrase, u.Company.BS,
		updatedAt,
	)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return dup
		}
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "update user").
			With("id", u.ID).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", u.ID).Wrap(user.ErrNotFound)
	}
	u.UpdatedAt = updatedAt
	return nil
}

// Delete removes a user by ID.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("operation", "delete user").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id).Wrap(user.ErrNotFound)
	}
	return nil
}

// duplicateError maps a unique violation to the matching user sentinel.
// It returns nil for any other error.
func duplicateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case constraintEmail:
		return oops.Code("USER_DUPLICATE").With("constraint", pgErr.ConstraintName).Wrap(user.ErrDuplicateEmail)
	case constraintUsername:
		return oops.Code("USER_DUPLICATE").With("constraint", pgErr.ConstraintName).Wrap(user.ErrDuplicateUsername)
	}
	return nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash,
		&u.Address.Street, &u.Address.Suite, &u.Address.City, &u.Address.Zipcode,
		&u.Address.Geo.Lat, &u.Address.Geo.Lng,
		&u.Phone, &u.Website,
		&u.Company.Name, &u.Company.CatchPhrase, &u.Company.BS,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with operation context
	}
	return u, nil
}

var _ user.Repository = (*Repository)(nil)
