/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"encoding/json"
	"net/http"

	"github.com/flamego/flamego"

	"github.com/humaidq/biodash/extract"
)

func writeJSON(c flamego.Context, status int, v interface{}) {
	c.ResponseWriter().Header().Set("Content-Type", "application/json")
	c.ResponseWriter().WriteHeader(status)

	if err := json.NewEncoder(c.ResponseWriter()).Encode(v); err != nil {
		logger.Error("Error writing JSON response", "path", c.Request().URL.Path, "error", err)
	}
}

func writeRawJSON(c flamego.Context, status int, body []byte) {
	c.ResponseWriter().Header().Set("Content-Type", "application/json")
	c.ResponseWriter().WriteHeader(status)

	if _, err := c.ResponseWriter().Write(body); err != nil {
		logger.Error("Error writing JSON response", "path", c.Request().URL.Path, "error", err)
	}
}

func writeError(c flamego.Context, status int, message, details string) {
	body := map[string]string{"error": message}
	if details != "" {
		body["details"] = details
	}

	writeJSON(c, status, body)
}

// writeExtractError writes a proxy failure with the status of its kind.
func writeExtractError(c flamego.Context, err error) {
	e := extract.AsError(err)

	switch {
	case extract.IsCanceled(err):
		logger.Debug("Client went away during extraction", "path", c.Request().URL.Path)
	case e.Status() >= http.StatusInternalServerError:
		logger.Error("Extraction failed", "path", c.Request().URL.Path, "error", err)
	default:
		logger.Warn("Extraction rejected", "path", c.Request().URL.Path, "error", err)
	}

	writeJSON(c, e.Status(), e.Body())
}
