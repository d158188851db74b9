// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"strings"

	"github.com/cloudzero/signal-store/app/types"
)

// ValidateID checks that id can name a record in every backend: non-empty, no
// path separators, and not hidden. Hidden names are reserved for lock and
// temporary files.
func ValidateID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: empty id", types.ErrInvalidID)
	case strings.HasPrefix(id, "."):
		return fmt.Errorf("%w: %q starts with a dot", types.ErrInvalidID, id)
	case strings.ContainsAny(id, `/\`+"\x00"):
		return fmt.Errorf("%w: %q contains a path separator", types.ErrInvalidID, id)
	}
	return nil
}
