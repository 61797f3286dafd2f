/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import "errors"

var (
	errDatabaseURLRequired   = errors.New("database-url is required (set via --database-url or DATABASE_URL env var)")
	errMigrationNameRequired = errors.New("migration name is required")
	errExtractURLRequired    = errors.New("extract-url must not be empty")
	errInvalidExtractTimeout = errors.New("extract-timeout must be positive")
	errInvalidUploadRate     = errors.New("upload-rate must be positive and upload-burst at least 1")
	errInvalidUploadSize     = errors.New("max-upload-mb must be positive")
)
