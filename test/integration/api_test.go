// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/accounts/internal/user/usertest"
)

type response struct {
	status int
	body   map[string]any
	list   []map[string]any
}

func call(method, path, token string, body any) response {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(env.ctx, method, env.server.URL+path, reader)
	Expect(err).NotTo(HaveOccurred())
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.server.Client().Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = resp.Body.Close() }()

	out := response{status: resp.StatusCode}
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err == nil {
		if len(raw) > 0 && raw[0] == '[' {
			Expect(json.Unmarshal(raw, &out.list)).To(Succeed())
		} else {
			_ = json.Unmarshal(raw, &out.body)
		}
	}
	return out
}

func registration(username, email, password string) map[string]any {
	in := usertest.NewInput(username, email)
	data, err := json.Marshal(in)
	Expect(err).NotTo(HaveOccurred())
	var body map[string]any
	Expect(json.Unmarshal(data, &body)).To(Succeed())
	body["password"] = password
	return body
}

var _ = Describe("Accounts API", func() {
	BeforeEach(func() {
		truncateUsers()
	})

	Describe("registration and login", func() {
		It("registers, logs in and returns the profile", func() {
			reg := call(http.MethodPost, "/auth/register", "", registration("bret", "Sincere@april.biz", "password123"))
			Expect(reg.status).To(Equal(http.StatusCreated))
			Expect(reg.body).To(HaveKeyWithValue("username", "bret"))
			Expect(reg.body).NotTo(HaveKey("password"))

			login := call(http.MethodPost, "/auth/login", "", map[string]any{
				"email": "Sincere@april.biz", "password": "password123",
			})
			Expect(login.status).To(Equal(http.StatusOK))
			token, ok := login.body["accessToken"].(string)
			Expect(ok).To(BeTrue())

			profile := call(http.MethodGet, "/auth/profile", token, nil)
			Expect(profile.status).To(Equal(http.StatusOK))
			Expect(profile.body).To(HaveKeyWithValue("email", "Sincere@april.biz"))
			Expect(profile.body).NotTo(HaveKey("password"))
		})

		It("rejects a duplicate email or username with 409", func() {
			Expect(call(http.MethodPost, "/auth/register", "", registration("bret", "a@x.com", "password123")).status).
				To(Equal(http.StatusCreated))

			dupEmail := call(http.MethodPost, "/auth/register", "", registration("antonette", "a@x.com", "password123"))
			Expect(dupEmail.status).To(Equal(http.StatusConflict))
			Expect(dupEmail.body["error"]).To(Equal("Email already exists"))

			dupName := call(http.MethodPost, "/auth/register", "", registration("bret", "b@x.com", "password123"))
			Expect(dupName.status).To(Equal(http.StatusConflict))
			Expect(dupName.body["error"]).To(Equal("Username already exists"))
		})

		It("returns 401 for a wrong password", func() {
			call(http.MethodPost, "/auth/register", "", registration("bret", "a@x.com", "password123"))
			login := call(http.MethodPost, "/auth/login", "", map[string]any{"email": "a@x.com", "password": "wrong-password"})
			Expect(login.status).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("user directory", func() {
		It("supports create, list, get, update and delete", func() {
			created := call(http.MethodPost, "/users", "", registration("bret", "a@x.com", "password123"))
			Expect(created.status).To(Equal(http.StatusCreated))
			id := int64(created.body["id"].(float64))
			path := fmt.Sprintf("/users/%d", id)

			list := call(http.MethodGet, "/users", "", nil)
			Expect(list.status).To(Equal(http.StatusOK))
			Expect(list.list).To(HaveLen(1))

			updated := call(http.MethodPatch, path, "", map[string]any{"username": "bret2"})
			Expect(updated.status).To(Equal(http.StatusOK))
			Expect(updated.body).To(HaveKeyWithValue("username", "bret2"))
			Expect(updated.body).To(HaveKeyWithValue("email", "a@x.com"))

			Expect(call(http.MethodDelete, path, "", nil).status).To(Equal(http.StatusNoContent))
			Expect(call(http.MethodGet, path, "", nil).status).To(Equal(http.StatusNotFound))
			Expect(call(http.MethodDelete, path, "", nil).status).To(Equal(http.StatusNotFound))
		})

		It("keeps email and username unique on update", func() {
			call(http.MethodPost, "/users", "", registration("bret", "a@x.com", "password123"))
			second := call(http.MethodPost, "/users", "", registration("antonette", "b@x.com", "password123"))
			path := fmt.Sprintf("/users/%d", int64(second.body["id"].(float64)))

			resp := call(http.MethodPatch, path, "", map[string]any{"email": "a@x.com"})
			Expect(resp.status).To(Equal(http.StatusConflict))

			resp = call(http.MethodPatch, path, "", map[string]any{"username": "bret"})
			Expect(resp.status).To(Equal(http.StatusConflict))
		})

		It("rejects the token of a removed user", func() {
			reg := call(http.MethodPost, "/auth/register", "", registration("bret", "a@x.com", "password123"))
			login := call(http.MethodPost, "/auth/login", "", map[string]any{"email": "a@x.com", "password": "password123"})
			token := login.body["accessToken"].(string)

			path := fmt.Sprintf("/users/%d", int64(reg.body["id"].(float64)))
			Expect(call(http.MethodDelete, path, "", nil).status).To(Equal(http.StatusNoContent))
			Expect(call(http.MethodGet, "/auth/profile", token, nil).status).To(Equal(http.StatusUnauthorized))
		})
	})
})
