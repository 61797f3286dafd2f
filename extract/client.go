/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package extract forwards lab report uploads to the external extraction
// service and normalizes its failures.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/humaidq/biodash/metrics"
)

// DefaultURL is the hosted extraction endpoint.
const DefaultURL = "https://passionate-eagerness-production-3c4a.up.railway.app/extract"

// DefaultTimeout bounds a single extraction call.
const DefaultTimeout = 60 * time.Second

// previewLimit is how much of a non-JSON upstream body is shown to clients.
const previewLimit = 200

// maxResponseSize caps how much of the upstream body is read.
const maxResponseSize = 16 << 20

// Config holds the extraction service configuration
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client forwards files to the extraction service
type Client struct {
	url  string
	http *http.Client
}

// NewClient returns a client for cfg, filling in defaults for empty fields.
func NewClient(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		url: cfg.URL,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// URL returns the configured extraction endpoint.
func (c *Client) URL() string {
	return c.url
}

// Upload is a file received from a client
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// Validate checks that the upload is a PDF.
func (u Upload) Validate() error {
	if u.Content == nil {
		return &Error{Kind: ErrInvalidInput, Message: "No file uploaded or invalid file format"}
	}

	if !strings.Contains(strings.ToLower(u.ContentType), "pdf") {
		return &Error{
			Kind:    ErrInvalidInput,
			Message: "Invalid file type. Please upload a PDF file.",
			Details: "Received file type: " + u.ContentType,
		}
	}

	return nil
}

// Response is a JSON reply from the extraction service
type Response struct {
	// UpstreamStatus is the status code the extraction service replied with.
	UpstreamStatus int
	// Body is the JSON body, relayed verbatim.
	Body json.RawMessage
}

// OK reports whether the extraction service replied with a 2xx status.
func (r *Response) OK() bool {
	return r.UpstreamStatus >= 200 && r.UpstreamStatus < 300
}

// RelayStatus is the status returned to clients: 200 for a successful
// upstream reply, 502 otherwise.
func (r *Response) RelayStatus() int {
	if r.OK() {
		return http.StatusOK
	}
	return http.StatusBadGateway
}

// Forward sends the upload to the extraction service as multipart field
// "file". Cancelling ctx aborts the upstream call. No retries are made.
func (c *Client) Forward(ctx context.Context, u Upload) (*Response, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	body, contentType, err := encodeUpload(u)
	if err != nil {
		return nil, &Error{Kind: ErrInternal, Message: "Internal server error", Details: err.Error(), Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, &Error{Kind: ErrInternal, Message: "Internal server error", Details: err.Error(), Cause: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordExtract(metrics.OutcomeUnreachable, time.Since(start))
		logger.Warn("Extraction service unreachable", "url", c.url, "error", err)

		return nil, &Error{
			Kind:    ErrUpstreamUnavailable,
			Message: "Failed to reach processing service",
			Details: err.Error(),
			Cause:   err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		metrics.RecordExtract(metrics.OutcomeUnreachable, time.Since(start))

		return nil, &Error{
			Kind:    ErrUpstreamUnavailable,
			Message: "Failed to reach processing service",
			Details: err.Error(),
			Cause:   err,
		}
	}

	if !json.Valid(raw) {
		metrics.RecordExtract(metrics.OutcomeInvalidJSON, time.Since(start))
		logger.Warn("Extraction service returned non-JSON body",
			"status", resp.StatusCode,
			"content_type", resp.Header.Get("Content-Type"),
			"bytes", len(raw),
		)

		return nil, &Error{
			Kind:    ErrUpstreamProtocol,
			Message: "Invalid response from processing service",
			Details: Preview(raw),
			Cause:   fmt.Errorf("upstream status %d", resp.StatusCode),
		}
	}

	out := &Response{UpstreamStatus: resp.StatusCode, Body: json.RawMessage(raw)}

	if out.OK() {
		metrics.RecordExtract(metrics.OutcomeOK, time.Since(start))
	} else {
		metrics.RecordExtract(metrics.OutcomeNon2xx, time.Since(start))
		logger.Warn("Extraction service returned error status", "status", resp.StatusCode)
	}

	return out, nil
}

// Preview returns at most the first 200 characters of an upstream body.
func Preview(raw []byte) string {
	runes := []rune(string(raw))
	if len(runes) > previewLimit {
		runes = runes[:previewLimit]
	}
	return string(runes)
}

func encodeUpload(u Upload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+sanitizeFilename(u.Filename)+`"`)
	header.Set("Content-Type", u.ContentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form part: %w", err)
	}

	if _, err := io.Copy(part, u.Content); err != nil {
		return nil, "", fmt.Errorf("failed to copy upload: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

func sanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, name)

	if name == "" {
		return "report.pdf"
	}
	return name
}

// IsCanceled reports whether err came from the caller abandoning the request.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
