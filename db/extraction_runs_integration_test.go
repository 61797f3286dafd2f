// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"errors"
	"testing"
	"time"
)

func TestExtractionRunLifecycle(t *testing.T) {
	resetDatabase(t)
	ctx := testContext()

	mustRecordRun(t, RecordExtractionRunInput{
		SessionID:      "session-a",
		Filename:       "report.pdf",
		Outcome:        RunMerged,
		ReportDate:     datePtr(2025, time.June, 16),
		Applied:        []string{"HDL Cholesterol"},
		Skipped:        []SkippedEntry{{Name: "Ferritin", Reason: "unknown_biomarker"}},
		UpstreamStatus: 200,
		Duration:       1500 * time.Millisecond,
	})
	mustRecordRun(t, RecordExtractionRunInput{
		SessionID:      "session-a",
		Filename:       "scan.pdf",
		Outcome:        RunUpstreamError,
		UpstreamStatus: 500,
	})
	mustRecordRun(t, RecordExtractionRunInput{SessionID: "session-b", Outcome: RunNoData})

	runs, err := ListExtractionRuns(ctx, "session-a", 10)
	if err != nil {
		t.Fatalf("ListExtractionRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	var merged *ExtractionRun
	for i := range runs {
		if runs[i].Outcome == RunMerged {
			merged = &runs[i]
		}
	}
	if merged == nil {
		t.Fatal("expected merged run")
	}
	if len(merged.Applied) != 1 || merged.Applied[0] != "HDL Cholesterol" {
		t.Fatalf("unexpected applied list %v", merged.Applied)
	}
	if len(merged.Skipped) != 1 || merged.Skipped[0].Reason != "unknown_biomarker" {
		t.Fatalf("unexpected skipped list %v", merged.Skipped)
	}
	if merged.ReportDate == nil || merged.ReportDate.Format("2006-01-02") != "2025-06-16" {
		t.Fatalf("unexpected report date %v", merged.ReportDate)
	}
	if merged.DurationMS != 1500 {
		t.Fatalf("expected duration 1500ms, got %d", merged.DurationMS)
	}

	removed, err := PruneExtractionRuns(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("PruneExtractionRuns failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 pruned runs, got %d", removed)
	}
}

func TestRecordExtractionRunRequiresSession(t *testing.T) {
	resetDatabase(t)

	if _, err := RecordExtractionRun(testContext(), RecordExtractionRunInput{Outcome: RunNoData}); !errors.Is(err, ErrSessionIDRequired) {
		t.Fatalf("expected ErrSessionIDRequired, got %v", err)
	}
}
