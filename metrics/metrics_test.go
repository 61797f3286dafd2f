// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandlerExposesRecordedMetrics(t *testing.T) {
	done := RequestStarted(http.MethodPost, "/api/extract")
	done(http.StatusBadGateway)

	RecordExtract(OutcomeInvalidJSON, 150*time.Millisecond)
	RecordMerge(2, []string{"unknown_biomarker"})
	RecordMergeRejected()
	SetSessions(3)
	RecordRateLimited()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`biodash_http_requests_total{method="POST",route="/api/extract",status="502"}`,
		`biodash_extract_requests_total{outcome="invalid_json"}`,
		`biodash_biomarkers_skipped_total{reason="unknown_biomarker"}`,
		"biodash_sessions_active 3",
		"biodash_merges_rejected_total",
		"biodash_rate_limited_total",
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("expected metrics output to contain %q", want)
		}
	}
}
