// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/humaidq/biodash/biomarker"
)

const hdlPayload = `{"biomarkers": {"HDL": {"value": "38", "unit": "mg/dL", "status": "Low"}}, "patientInfo": {"reportDate": "2025-06-16"}}`

func assertExtractCORSHeaders(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("unexpected Access-Control-Allow-Origin: %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS" {
		t.Fatalf("unexpected Access-Control-Allow-Methods: %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type" {
		t.Fatalf("unexpected Access-Control-Allow-Headers: %q", got)
	}
}

func TestExtractRelaysUpstreamJSON(t *testing.T) {
	t.Parallel()

	upstream := newUpstream(t, http.StatusOK, "application/json", hdlPayload)
	f := newTestApp(t, upstream.URL, biomarker.NewStore())

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, newUploadRequest(t, "/api/extract", "application/pdf", []byte("%PDF-1.7")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d (%s)", http.StatusOK, rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != hdlPayload {
		t.Fatalf("expected upstream body verbatim, got %q", got)
	}
	assertExtractCORSHeaders(t, rec)
}

func TestExtractRejectsNonPDF(t *testing.T) {
	t.Parallel()

	f := newTestApp(t, "http://127.0.0.1:1", biomarker.NewStore())

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, newUploadRequest(t, "/api/extract", "image/png", []byte("png")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	var body map[string]string
	decodeBody(t, rec, &body)

	if body["error"] != "Invalid file type. Please upload a PDF file." {
		t.Fatalf("unexpected error %q", body["error"])
	}
	if body["details"] != "Received file type: image/png" {
		t.Fatalf("unexpected details %q", body["details"])
	}
}

func TestExtractRejectsMissingFile(t *testing.T) {
	t.Parallel()

	f := newTestApp(t, "http://127.0.0.1:1", biomarker.NewStore())

	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader("not a form"))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	var body map[string]string
	decodeBody(t, rec, &body)

	if body["error"] != "No file uploaded or invalid file format" {
		t.Fatalf("unexpected error %q", body["error"])
	}
}

func TestExtractNonJSONUpstreamIsBadGateway(t *testing.T) {
	t.Parallel()

	page := "<html><body>" + strings.Repeat("Internal Server Error ", 30) + "</body></html>"
	upstream := newUpstream(t, http.StatusInternalServerError, "text/html", page)
	f := newTestApp(t, upstream.URL, biomarker.NewStore())

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, newUploadRequest(t, "/api/extract", "application/pdf", []byte("%PDF")))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, rec.Code)
	}

	var body map[string]string
	decodeBody(t, rec, &body)

	if body["error"] != "Invalid response from processing service" {
		t.Fatalf("unexpected error %q", body["error"])
	}
	if body["details"] != page[:200] {
		t.Fatalf("expected first 200 characters as details, got %q", body["details"])
	}
}

func TestExtractUpstreamErrorJSONIsBadGateway(t *testing.T) {
	t.Parallel()

	upstream := newUpstream(t, http.StatusInternalServerError, "application/json", `{"error": "model crashed"}`)
	f := newTestApp(t, upstream.URL, biomarker.NewStore())

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, newUploadRequest(t, "/api/extract", "application/pdf", []byte("%PDF")))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "model crashed") {
		t.Fatalf("expected upstream body relayed, got %q", rec.Body.String())
	}
}

func TestExtractUnreachableUpstream(t *testing.T) {
	t.Parallel()

	upstream := newUpstream(t, http.StatusOK, "application/json", "{}")
	url := upstream.URL
	upstream.Close()

	f := newTestApp(t, url, biomarker.NewStore())

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, newUploadRequest(t, "/api/extract", "application/pdf", []byte("%PDF")))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}

	var body map[string]string
	decodeBody(t, rec, &body)

	if body["error"] != "Failed to reach processing service" || body["details"] == "" {
		t.Fatalf("unexpected error body %v", body)
	}
}

func TestExtractOptionsPreflight(t *testing.T) {
	t.Parallel()

	f := newTestApp(t, "http://127.0.0.1:1", biomarker.NewStore())

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/extract", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
	assertExtractCORSHeaders(t, rec)
}
