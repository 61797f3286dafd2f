/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import "errors"

var (
	// ErrInvalidExtraction marks an extraction payload that cannot be merged at all.
	ErrInvalidExtraction = errors.New("invalid extraction payload")
	// ErrUnparseableValue marks a single reading whose value is not a number.
	ErrUnparseableValue = errors.New("unparseable biomarker value")
	// ErrInvalidExport marks an export artifact that cannot be imported.
	ErrInvalidExport = errors.New("invalid export artifact")
	// ErrUploadInProgress is returned when a session already has an upload in flight.
	ErrUploadInProgress = errors.New("an upload is already being processed")

	errMissingBiomarkers = errors.New("payload has no biomarkers")
	errNonScalarValue    = errors.New("value must be a string or number")
	errEntryNotObject    = errors.New("entry is not an object")
)
