/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"net/http"
	"strings"

	"github.com/flamego/flamego"
)

// APIHeaders sets hardening headers on every response and disables caching of
// patient data served under /api.
func APIHeaders() flamego.Handler {
	return func(c flamego.Context) {
		header := c.ResponseWriter().Header()
		header.Set("X-Robots-Tag", "noindex, nofollow")
		header.Set("X-Content-Type-Options", "nosniff")
		header.Set("X-Frame-Options", "DENY")
		header.Set("Referrer-Policy", "no-referrer")

		if isPatientDataRequest(c.Request().Request) {
			header.Set("Cache-Control", "no-store")
			header.Set("Pragma", "no-cache")
		}

		c.Next()
	}
}

func isPatientDataRequest(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}

	return strings.HasPrefix(r.URL.Path, "/api/")
}
