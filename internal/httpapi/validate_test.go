// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package httpapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/accounts/internal/user"
	"github.com/holomush/accounts/pkg/errutil"
)

func TestGenerateSchema(t *testing.T) {
	assert.Equal(t, []string{SchemaCreateUser, SchemaLogin, SchemaUpdateUser}, SchemaNames())

	data, err := GenerateSchema(SchemaCreateUser)
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "CreateUser", schema["title"])
	assert.Equal(t, false, schema["additionalProperties"])
	assert.ElementsMatch(t,
		[]any{"name", "username", "email", "address", "phone", "company"},
		schema["required"])

	_, err = GenerateSchema("nope")
	errutil.AssertErrorCode(t, err, "SCHEMA_UNKNOWN")
}

func TestBodyValidator_Patch(t *testing.T) {
	v, err := newBodyValidator()
	require.NoError(t, err)

	var p user.Patch
	require.NoError(t, v.decode(SchemaUpdateUser, []byte(`{"username":"new-name","website":"hildegard.org"}`), &p))
	require.NotNil(t, p.Username)
	assert.Equal(t, "new-name", *p.Username)
	require.NotNil(t, p.Website)
	assert.Nil(t, p.Email)

	require.NoError(t, v.decode(SchemaUpdateUser, []byte(`{}`), &user.Patch{}))

	var cleared user.Patch
	require.NoError(t, v.decode(SchemaUpdateUser, []byte(`{"website":null,"password":null}`), &cleared))
	assert.True(t, cleared.IsEmpty())

	err = v.decode(SchemaUpdateUser, []byte(`{"password":"short"}`), &user.Patch{})
	errutil.AssertErrorCode(t, err, CodeRequestInvalid)

	err = v.decode(SchemaUpdateUser, []byte(`{"address":{"city":"Gwenborough"}}`), &user.Patch{})
	errutil.AssertErrorCode(t, err, CodeRequestInvalid)

	err = v.decode(SchemaUpdateUser, []byte(`{"email":null}`), &user.Patch{})
	errutil.AssertErrorCode(t, err, CodeRequestInvalid)
}

func TestBodyValidator_Login(t *testing.T) {
	v, err := newBodyValidator()
	require.NoError(t, err)

	var req LoginRequest
	require.NoError(t, v.decode(SchemaLogin, []byte(`{"email":"a@x.com","password":""}`), &req))
	assert.Equal(t, "a@x.com", req.Email)

	err = v.decode(SchemaLogin, []byte(`{"email":"a@x.com","password":"x","remember":true}`), &LoginRequest{})
	errutil.AssertErrorCode(t, err, CodeRequestInvalid)
	assert.Contains(t, err.Error(), "remember")
}
