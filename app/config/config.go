// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config holds what the configuration packages below it share.
package config

// Serializable is a small interface that ensures certain objects can be freely represented in
// various encoded forms, usually for the purpose of writing them out for inspection
type Serializable interface {
	ToBytes() ([]byte, error)
}
