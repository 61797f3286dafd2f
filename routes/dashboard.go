/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"

	"github.com/humaidq/biodash/biomarker"
	"github.com/humaidq/biodash/db"
	"github.com/humaidq/biodash/extract"
	"github.com/humaidq/biodash/metrics"
)

const auditWriteTimeout = 5 * time.Second

type dashboardResponse struct {
	PatientInfo biomarker.PatientInfo            `json:"patientInfo"`
	Biomarkers  biomarker.Dataset                `json:"biomarkers"`
	Summary     biomarker.Summary                `json:"summary"`
	RiskFactors []string                         `json:"riskFactors"`
	RangeStatus map[string]biomarker.RangeStatus `json:"rangeStatus"`
}

type uploadResponse struct {
	Message     string                `json:"message"`
	Updated     bool                  `json:"updated"`
	Applied     []string              `json:"applied"`
	Skipped     []biomarker.Skipped   `json:"skipped"`
	PatientInfo biomarker.PatientInfo `json:"patientInfo"`
}

func newDashboardResponse(state biomarker.State) dashboardResponse {
	return dashboardResponse{
		PatientInfo: state.Patient,
		Biomarkers:  state.Dataset,
		Summary:     biomarker.Summarize(state.Dataset),
		RiskFactors: biomarker.RiskFactors(state.Dataset),
		RangeStatus: biomarker.RangeStatuses(state.Dataset),
	}
}

// Dashboard returns the session's patient, biomarkers and summary.
func Dashboard(c flamego.Context, s session.Session, store *biomarker.Store) {
	writeJSON(c, http.StatusOK, newDashboardResponse(store.Get(s.ID())))
}

// DashboardGroups returns the chart groups for the session's biomarkers.
func DashboardGroups(c flamego.Context, s session.Session, store *biomarker.Store) {
	state := store.Get(s.ID())

	writeJSON(c, http.StatusOK, struct {
		Groups []biomarker.Group `json:"groups"`
	}{
		Groups: biomarker.Project(state.Dataset),
	})
}

// DashboardUpload sends a report to the extraction service and merges the
// result into the session's biomarkers.
func DashboardUpload(c flamego.Context, s session.Session, store *biomarker.Store, client *extract.Client, opts UploadOptions) {
	upload, closeUpload, err := readUpload(c, opts.maxBytes())
	if err != nil {
		writeExtractError(c, err)
		return
	}
	defer closeUpload()

	sessionID := s.ID()

	release, err := store.BeginUpload(sessionID)
	if err != nil {
		logRequestRejected(c, s, "upload_in_progress", http.StatusConflict)
		writeError(c, http.StatusConflict, "An upload is already being processed", "")

		return
	}
	defer release()

	ctx := c.Request().Context()
	start := time.Now()

	audit := db.RecordExtractionRunInput{
		SessionID: sessionID,
		Filename:  upload.Filename,
	}

	resp, err := client.Forward(ctx, upload)
	if err != nil {
		audit.Outcome = db.RunUpstreamError
		audit.Duration = time.Since(start)
		recordRun(ctx, audit)

		writeExtractError(c, err)

		return
	}

	audit.UpstreamStatus = resp.UpstreamStatus
	audit.Duration = time.Since(start)

	if !resp.OK() {
		audit.Outcome = db.RunUpstreamError
		recordRun(ctx, audit)

		writeRawJSON(c, resp.RelayStatus(), resp.Body)

		return
	}

	ext, err := biomarker.ParseExtraction(resp.Body)
	if err != nil {
		rejectExtraction(c, audit, err)
		return
	}

	state, result, err := store.Apply(sessionID, ext)
	if err != nil {
		rejectExtraction(c, audit, err)
		return
	}

	audit.Applied = result.Applied
	audit.Skipped = skippedEntries(result.Skipped)
	audit.ReportDate = reportDate(ext)
	audit.Outcome = db.RunNoData
	if result.Updated() {
		audit.Outcome = db.RunMerged
	}
	recordRun(ctx, audit)

	metrics.RecordMerge(len(result.Applied), skippedReasons(result.Skipped))
	logger.Info("Report merged",
		"session", sessionID,
		"file", upload.Filename,
		"applied", len(result.Applied),
		"skipped", len(result.Skipped),
	)

	writeJSON(c, http.StatusOK, uploadResponse{
		Message:     result.Message(),
		Updated:     result.Updated(),
		Applied:     result.Applied,
		Skipped:     result.Skipped,
		PatientInfo: state.Patient,
	})
}

func rejectExtraction(c flamego.Context, audit db.RecordExtractionRunInput, err error) {
	metrics.RecordMergeRejected()

	audit.Outcome = db.RunInvalidExtraction
	recordRun(c.Request().Context(), audit)

	logger.Warn("Extraction payload rejected", "session", audit.SessionID, "error", err)
	writeError(c, http.StatusUnprocessableEntity, "Invalid extraction data", err.Error())
}

// DashboardExport downloads the session's health report.
func DashboardExport(c flamego.Context, s session.Session, store *biomarker.Store) {
	now := time.Now()
	state := store.Get(s.ID())

	body, err := json.MarshalIndent(biomarker.BuildExport(state, now), "", "  ")
	if err != nil {
		logger.Error("Error encoding export", "error", err)
		writeError(c, http.StatusInternalServerError, "Internal server error", err.Error())

		return
	}

	c.ResponseWriter().Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, biomarker.ExportFilename(state.Patient, now)))
	writeRawJSON(c, http.StatusOK, body)
}

// DashboardImport replaces the session's state with an exported report.
func DashboardImport(c flamego.Context, s session.Session, store *biomarker.Store, opts UploadOptions) {
	body, err := io.ReadAll(http.MaxBytesReader(c.ResponseWriter(), c.Request().Body().ReadCloser(), opts.maxBytes()))
	if err != nil {
		writeError(c, http.StatusBadRequest, "Invalid export file", err.Error())
		return
	}

	state, err := biomarker.ParseExport(body)
	if err != nil {
		writeError(c, http.StatusUnprocessableEntity, "Invalid export file", err.Error())
		return
	}

	store.Replace(s.ID(), state)
	logger.Info("Report imported", "session", s.ID(), "biomarkers", len(state.Dataset))

	writeJSON(c, http.StatusOK, newDashboardResponse(state))
}

// DashboardReset restores the seed biomarkers for the session.
func DashboardReset(c flamego.Context, s session.Session, store *biomarker.Store) {
	state := store.Reset(s.ID())
	writeJSON(c, http.StatusOK, newDashboardResponse(state))
}

// DashboardUploads lists the session's audited uploads.
func DashboardUploads(c flamego.Context, s session.Session) {
	if !db.Enabled() {
		writeJSON(c, http.StatusOK, map[string]interface{}{
			"enabled": false,
			"runs":    []db.ExtractionRun{},
		})

		return
	}

	runs, err := db.ListExtractionRuns(c.Request().Context(), s.ID(), 20)
	if err != nil {
		logger.Error("Error listing extraction runs", "error", err)
		writeError(c, http.StatusInternalServerError, "Internal server error", "failed to list uploads")

		return
	}

	writeJSON(c, http.StatusOK, map[string]interface{}{
		"enabled": true,
		"runs":    runs,
	})
}

// recordRun writes an audit row when the database is configured. Failures
// are logged and never affect the response.
func recordRun(ctx context.Context, input db.RecordExtractionRunInput) {
	if !db.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	if _, err := db.RecordExtractionRun(ctx, input); err != nil {
		logger.Warn("Failed to record extraction run", "session", input.SessionID, "error", err)
	}
}

func skippedEntries(skipped []biomarker.Skipped) []db.SkippedEntry {
	out := make([]db.SkippedEntry, 0, len(skipped))
	for _, s := range skipped {
		out = append(out, db.SkippedEntry{Name: s.Name, Reason: string(s.Reason)})
	}
	return out
}

func skippedReasons(skipped []biomarker.Skipped) []string {
	out := make([]string, 0, len(skipped))
	for _, s := range skipped {
		out = append(out, string(s.Reason))
	}
	return out
}

func reportDate(ext *biomarker.Extraction) *time.Time {
	date, ok := ext.EffectiveReportDate()
	if !ok {
		return nil
	}

	t, err := time.Parse(biomarker.DateLayout, date)
	if err != nil {
		return nil
	}

	return &t
}
