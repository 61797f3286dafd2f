// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"testing"
	"time"
)

func testContext() context.Context {
	return context.Background()
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func mustRecordRun(t *testing.T, input RecordExtractionRunInput) {
	t.Helper()

	if _, err := RecordExtractionRun(testContext(), input); err != nil {
		t.Fatalf("failed to record extraction run: %v", err)
	}
}
