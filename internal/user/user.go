// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package user

import "time"

// Geo is a latitude/longitude pair stored as the strings clients send.
type Geo struct {
	Lat string `json:"lat" jsonschema:"minLength=1"`
	Lng string `json:"lng" jsonschema:"minLength=1"`
}

// Address is embedded in User and has no identity of its own.
type Address struct {
	Street  string `json:"street" jsonschema:"minLength=1"`
	Suite   string `json:"suite" jsonschema:"minLength=1"`
	City    string `json:"city" jsonschema:"minLength=1"`
	Zipcode string `json:"zipcode" jsonschema:"minLength=1"`
	Geo     Geo    `json:"geo"`
}

// Company is embedded in User and has no identity of its own.
type Company struct {
	Name        string `json:"name" jsonschema:"minLength=1"`
	CatchPhrase string `json:"catchPhrase" jsonschema:"minLength=1"`
	BS          string `json:"bs" jsonschema:"minLength=1"`
}

// User is a directory entry.
//
// PasswordHash is never plaintext once it reaches the directory. Use Public
// before handing a User to anything outside the process.
type User struct {
	ID           int64
	Name         string
	Username     string
	Email        string
	PasswordHash *string
	Address      Address
	Phone        string
	Website      *string
	Company      Company
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether a password hash is stored.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Public is the caller-visible view of a User. It has no password field.
type Public struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Address  Address `json:"address"`
	Phone    string  `json:"phone"`
	Website  *string `json:"website,omitempty"`
	Company  Company `json:"company"`
}

// Public strips the password from u.
func (u *User) Public() *Public {
	if u == nil {
		return nil
	}
	return &Public{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
		Address:  u.Address,
		Phone:    u.Phone,
		Website:  u.Website,
		Company:  u.Company,
	}
}

// PublicList strips passwords from every user in users.
func PublicList(users []*User) []*Public {
	out := make([]*Public, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}

// CreateInput carries the fields of a new user. Password is optional here;
// registration requires it, direct creation does not. Optional fields
// accept JSON null as absent.
type CreateInput struct {
	Name     string  `json:"name" jsonschema:"minLength=1"`
	Username string  `json:"username" jsonschema:"minLength=1"`
	Email    string  `json:"email" jsonschema:"format=email"`
	Password *string `json:"password,omitempty" jsonschema:"nullable,minLength=8"`
	Address  Address `json:"address"`
	Phone    string  `json:"phone" jsonschema:"minLength=1"`
	Website  *string `json:"website,omitempty" jsonschema:"nullable"`
	Company  Company `json:"company"`
}

// Patch is a partial update. Nil fields are left unchanged. Address and
// Company replace the embedded value as a whole.
type Patch struct {
	Name     *string  `json:"name,omitempty" jsonschema:"minLength=1"`
	Username *string  `json:"username,omitempty" jsonschema:"minLength=1"`
	Email    *string  `json:"email,omitempty" jsonschema:"format=email"`
	Password *string  `json:"password,omitempty" jsonschema:"nullable,minLength=8"`
	Address  *Address `json:"address,omitempty"`
	Phone    *string  `json:"phone,omitempty" jsonschema:"minLength=1"`
	Website  *string  `json:"website,omitempty" jsonschema:"nullable"`
	Company  *Company `json:"company,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Username == nil && p.Email == nil && p.Password == nil &&
		p.Address == nil && p.Phone == nil && p.Website == nil && p.Company == nil
}

// Apply copies the supplied fields of p onto u.
func (p Patch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		hash := *p.Password
		u.PasswordHash = &hash
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Website != nil {
		website := *p.Website
		u.Website = &website
	}
	if p.Company != nil {
		u.Company = *p.Company
	}
}

// newUser builds an unsaved User from in.
func newUser(in CreateInput) *User {
	u := &User{
		Name:     in.Name,
		Username: in.Username,
		Email:    in.Email,
		Address:  in.Address,
		Phone:    in.Phone,
		Website:  in.Website,
		Company:  in.Company,
	}
	if in.Password != nil {
		hash := *in.Password
		u.PasswordHash = &hash
	}
	return u
}
