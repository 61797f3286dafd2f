// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/flamego/flamego"
	"github.com/flamego/session"

	"github.com/humaidq/biodash/biomarker"
	"github.com/humaidq/biodash/extract"
)

type testSession struct {
	id    string
	data  map[interface{}]interface{}
	flash interface{}
}

func newTestSession() *testSession {
	return &testSession{
		id:   "test-session",
		data: make(map[interface{}]interface{}),
	}
}

func (s *testSession) ID() string {
	return s.id
}

func (s *testSession) RegenerateID(http.ResponseWriter, *http.Request) error {
	return nil
}

func (s *testSession) Get(key interface{}) interface{} {
	return s.data[key]
}

func (s *testSession) Set(key, val interface{}) {
	s.data[key] = val
}

func (s *testSession) SetFlash(val interface{}) {
	s.flash = val
}

func (s *testSession) Delete(key interface{}) {
	delete(s.data, key)
}

func (s *testSession) Flush() {
	s.data = make(map[interface{}]interface{})
}

func (s *testSession) Encode() ([]byte, error) {
	return nil, nil
}

func (s *testSession) HasChanged() bool {
	return true
}

// newTestApp wires the API routes against an upstream extraction server.
func newTestApp(t *testing.T, upstreamURL string, store *biomarker.Store) *flamego.Flame {
	t.Helper()

	f := flamego.New()
	f.MapTo(newTestSession(), (*session.Session)(nil))
	f.Map(store)
	f.Map(extract.NewClient(extract.Config{URL: upstreamURL}))
	f.Map(UploadOptions{MaxUploadBytes: 1 << 20})

	f.Post("/api/extract", Extract)
	f.Options("/api/extract", Extract)
	f.Get("/api/dashboard", Dashboard)
	f.Post("/api/dashboard/upload", DashboardUpload)
	f.Get("/api/dashboard/groups", DashboardGroups)
	f.Get("/api/dashboard/export", DashboardExport)
	f.Post("/api/dashboard/import", DashboardImport)
	f.Post("/api/dashboard/reset", DashboardReset)
	f.Get("/api/dashboard/uploads", DashboardUploads)
	f.Get("/healthz", Healthz)

	return f
}

func newUpstream(t *testing.T, status int, contentType, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newUploadRequest(t *testing.T, target, contentType string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="report.pdf"`)
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create form part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write form part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed decoding response: %v (body %q)", err, rec.Body.String())
	}
}
