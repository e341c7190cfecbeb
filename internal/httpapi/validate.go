// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/holomush/accounts/internal/user"
)

// LoginRequest is the body of POST /auth/login. The password is not
// length-checked here so that every wrong password fails the same way.
type LoginRequest struct {
	Email    string `json:"email" jsonschema:"format=email"`
	Password string `json:"password"`
}

// Request body schema names.
const (
	SchemaCreateUser = "create-user"
	SchemaLogin      = "login"
	SchemaUpdateUser = "update-user"
)

type requestBody struct {
	title string
	value any
}

var requestBodies = map[string]requestBody{
	SchemaCreateUser: {title: "CreateUser", value: &user.CreateInput{}},
	SchemaLogin:      {title: "Login", value: &LoginRequest{}},
	SchemaUpdateUser: {title: "UpdateUser", value: &user.Patch{}},
}

// SchemaNames returns the names accepted by GenerateSchema, sorted.
func SchemaNames() []string {
	names := make([]string, 0, len(requestBodies))
	for name := range requestBodies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GenerateSchema returns the indented JSON Schema of the named request body.
func GenerateSchema(name string) ([]byte, error) {
	body, ok := requestBodies[name]
	if !ok {
		return nil, oops.Code("SCHEMA_UNKNOWN").With("schema", name).Errorf("unknown request schema %q", name)
	}

	r := jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}
	schema := r.Reflect(body.value)
	schema.Title = body.title

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.With("schema", name).Wrapf(err, "marshal schema")
	}
	return data, nil
}

// bodyValidator holds the compiled schema of every request body.
type bodyValidator struct {
	schemas map[string]*jschema.Schema
}

func newBodyValidator() (*bodyValidator, error) {
	v := &bodyValidator{schemas: make(map[string]*jschema.Schema, len(requestBodies))}
	for _, name := range SchemaNames() {
		sch, err := compileSchema(name)
		if err != nil {
			return nil, err
		}
		v.schemas[name] = sch
	}
	return v, nil
}

func compileSchema(name string) (*jschema.Schema, error) {
	data, err := GenerateSchema(name)
	if err != nil {
		return nil, err
	}

	doc, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, oops.With("schema", name).Wrapf(err, "parse schema")
	}

	c := jschema.NewCompiler()
	c.AssertFormat()
	url := name + ".json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, oops.With("schema", name).Wrapf(err, "add schema resource")
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, oops.With("schema", name).Wrapf(err, "compile schema")
	}
	return sch, nil
}

// decode validates body against the named schema and unmarshals it into dst.
func (v *bodyValidator) decode(name string, body []byte, dst any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return errInvalidRequest("request body is required")
	}

	doc, err := jschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return errInvalidRequest("malformed JSON body")
	}

	if err := v.schemas[name].Validate(doc); err != nil {
		var verr *jschema.ValidationError
		if errors.As(err, &verr) {
			return oops.Code(CodeRequestInvalid).
				With("schema", name).
				Errorf("%s", describe(verr))
		}
		return errInvalidRequest("invalid request body")
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return errInvalidRequest("invalid request body")
	}
	return nil
}

// describe lists the leaf failures of a validation error as
// "location: problem" pairs.
func describe(verr *jschema.ValidationError) string {
	var parts []string
	collect(verr.DetailedOutput(), &parts)
	if len(parts) == 0 {
		return "invalid request body"
	}
	return strings.Join(parts, "; ")
}

func collect(unit *jschema.OutputUnit, parts *[]string) {
	if unit.Error != nil && len(unit.Errors) == 0 {
		loc := unit.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*parts = append(*parts, loc+": "+unit.Error.String())
	}
	for i := range unit.Errors {
		collect(&unit.Errors[i], parts)
	}
}
