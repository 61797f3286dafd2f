/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package metrics exposes Prometheus instrumentation for the dashboard API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream call outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeNon2xx      = "non_2xx"
	OutcomeInvalidJSON = "invalid_json"
	OutcomeUnreachable = "unreachable"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biodash_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "biodash_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "biodash_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	extractRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biodash_extract_requests_total",
			Help: "Total number of calls to the extraction service",
		},
		[]string{"outcome"},
	)

	extractRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "biodash_extract_request_duration_seconds",
			Help:    "Extraction service call duration in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)

	biomarkersApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biodash_biomarkers_applied_total",
			Help: "Total number of biomarker readings merged into a dataset",
		},
	)

	biomarkersSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biodash_biomarkers_skipped_total",
			Help: "Total number of extracted biomarkers left out of a merge",
		},
		[]string{"reason"},
	)

	mergesRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biodash_merges_rejected_total",
			Help: "Total number of extraction payloads rejected as invalid",
		},
	)

	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "biodash_sessions_active",
			Help: "Number of sessions holding a dashboard state",
		},
	)

	rateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biodash_rate_limited_total",
			Help: "Total number of requests rejected by the upload rate limiter",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RequestStarted tracks an in-flight request and returns a function that
// records its completion.
func RequestStarted(method, route string) func(status int) {
	start := time.Now()
	httpRequestsInFlight.Inc()

	return func(status int) {
		httpRequestsInFlight.Dec()
		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordExtract records one call to the extraction service
func RecordExtract(outcome string, duration time.Duration) {
	extractRequestsTotal.WithLabelValues(outcome).Inc()
	extractRequestDuration.Observe(duration.Seconds())
}

// RecordMerge records the result of a reconciliation
func RecordMerge(applied int, skippedReasons []string) {
	biomarkersApplied.Add(float64(applied))
	for _, reason := range skippedReasons {
		biomarkersSkipped.WithLabelValues(reason).Inc()
	}
}

// RecordMergeRejected records an extraction payload that failed validation
func RecordMergeRejected() {
	mergesRejected.Inc()
}

// SetSessions records the number of tracked sessions
func SetSessions(n int) {
	sessionsActive.Set(float64(n))
}

// RecordRateLimited records a request rejected by the rate limiter
func RecordRateLimited() {
	rateLimited.Inc()
}
