/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/flamego/flamego"

	"github.com/humaidq/biodash/extract"
)

// DefaultMaxUploadBytes bounds the size of an uploaded report.
const DefaultMaxUploadBytes = 20 << 20

// UploadOptions configures the upload endpoints
type UploadOptions struct {
	MaxUploadBytes int64
}

func (o UploadOptions) maxBytes() int64 {
	if o.MaxUploadBytes <= 0 {
		return DefaultMaxUploadBytes
	}
	return o.MaxUploadBytes
}

// Extract forwards an uploaded report to the extraction service and relays
// its JSON reply.
func Extract(c flamego.Context, client *extract.Client, opts UploadOptions) {
	addExtractCORSHeaders(c)
	if c.Request().Method == http.MethodOptions {
		c.ResponseWriter().WriteHeader(http.StatusNoContent)
		return
	}

	upload, closeUpload, err := readUpload(c, opts.maxBytes())
	if err != nil {
		writeExtractError(c, err)
		return
	}
	defer closeUpload()

	resp, err := client.Forward(c.Request().Context(), upload)
	if err != nil {
		writeExtractError(c, err)
		return
	}

	writeRawJSON(c, resp.RelayStatus(), resp.Body)
}

// readUpload parses the multipart form and returns the "file" field. The
// returned function releases the file and any temporary form storage.
func readUpload(c flamego.Context, maxBytes int64) (extract.Upload, func(), error) {
	noUpload := &extract.Error{Kind: extract.ErrInvalidInput, Message: "No file uploaded or invalid file format"}

	r := c.Request().Request
	r.Body = http.MaxBytesReader(c.ResponseWriter(), r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			noUpload.Details = fmt.Sprintf("File exceeds the %d MB limit", maxBytes>>20)
			noUpload.Cause = errUploadTooLarge
			return extract.Upload{}, func() {}, noUpload
		}

		noUpload.Cause = err
		return extract.Upload{}, func() {}, noUpload
	}

	cleanupForm := func() {
		if r.MultipartForm != nil {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				logger.Warn("Error removing upload form files", "error", err)
			}
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		cleanupForm()
		noUpload.Cause = fmt.Errorf("%w: %v", errMissingFile, err)
		return extract.Upload{}, func() {}, noUpload
	}

	upload := extract.Upload{
		Filename:    uploadFilename(header),
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	}

	release := func() {
		if err := file.Close(); err != nil {
			logger.Warn("Error closing upload file", "error", err)
		}
		cleanupForm()
	}

	if err := upload.Validate(); err != nil {
		release()
		return extract.Upload{}, func() {}, err
	}

	return upload, release, nil
}

func uploadFilename(header *multipart.FileHeader) string {
	name := strings.ReplaceAll(header.Filename, "\\", "/")
	return path.Base(name)
}

func addExtractCORSHeaders(c flamego.Context) {
	header := c.ResponseWriter().Header()
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Content-Type")
}
