// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package build carries the build metadata stamped in with -ldflags.
package build

import "fmt"

// Values overridden at link time, e.g.
//
//	-X github.com/cloudzero/signal-store/app/build.Rev=$(git rev-parse --short HEAD)
var (
	AuthorName  = "CloudZero"
	AuthorEmail = "support@cloudzero.com"
	Copyright   = "© 2024-2025 Cloudzero, Inc."
	PlatformURL = "https://www.cloudzero.com"

	Rev  = "local"
	Tag  = "dev"
	Time = "unknown"
)

// GetVersion returns the tag and revision as a single version string.
func GetVersion() string {
	return fmt.Sprintf("%s-%s", Tag, Rev)
}
