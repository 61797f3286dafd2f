/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"net/http"

	"github.com/flamego/flamego"

	"github.com/humaidq/biodash/biomarker"
	"github.com/humaidq/biodash/db"
)

// Healthz reports liveness.
func Healthz(c flamego.Context, store *biomarker.Store) {
	writeJSON(c, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"database": db.Enabled(),
		"sessions": store.Len(),
	})
}
