/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import "errors"

var (
	errUploadTooLarge = errors.New("upload exceeds size limit")
	errMissingFile    = errors.New("missing file field")
)
