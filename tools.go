// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build tools

// Package main records the ginkgo CLI, which runs the integration suites
// (ginkgo -tags integration ./...), as a module requirement.
package main

import (
	_ "github.com/onsi/ginkgo/v2/ginkgo"
)
