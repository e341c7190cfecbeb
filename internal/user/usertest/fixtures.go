// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package usertest

import "github.com/holomush/accounts/internal/user"

// NewInput returns a complete CreateInput without a password.
func NewInput(username, email string) user.CreateInput {
	return user.CreateInput{
		Name:     "Leanne Graham",
		Username: username,
		Email:    email,
		Address: user.Address{
			Street:  "Kulas Light",
			Suite:   "Apt. 556",
			City:    "Gwenborough",
			Zipcode: "92998-3874",
			Geo:     user.Geo{Lat: "-37.3159", Lng: "81.1496"},
		},
		Phone: "1-770-736-8031 x56442",
		Company: user.Company{
			Name:        "Romaguera-Crona",
			CatchPhrase: "Multi-layered client-server neural-net",
			BS:          "harness real-time e-markets",
		},
	}
}
