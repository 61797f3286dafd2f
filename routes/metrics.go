/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"net/http"

	"github.com/flamego/flamego"

	"github.com/humaidq/biodash/metrics"
)

// knownRoutes keeps metric labels bounded; anything else is "other".
var knownRoutes = map[string]struct{}{
	"/api/extract":           {},
	"/api/dashboard":         {},
	"/api/dashboard/upload":  {},
	"/api/dashboard/groups":  {},
	"/api/dashboard/export":  {},
	"/api/dashboard/import":  {},
	"/api/dashboard/reset":   {},
	"/api/dashboard/uploads": {},
	"/healthz":               {},
	"/metrics":               {},
}

func metricsRoute(path string) string {
	if _, ok := knownRoutes[path]; ok {
		return path
	}
	return "other"
}

// RequestMetrics records count and latency for each request.
func RequestMetrics(c flamego.Context) {
	done := metrics.RequestStarted(c.Request().Method, metricsRoute(c.Request().URL.Path))

	c.Next()

	status := c.ResponseWriter().Status()
	if status == 0 {
		status = http.StatusOK
	}

	done(status)
}

// Metrics serves the Prometheus exposition.
func Metrics(c flamego.Context) {
	metrics.Handler().ServeHTTP(c.ResponseWriter(), c.Request().Request)
}
