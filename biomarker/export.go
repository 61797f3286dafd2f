/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ReportMetadata describes how an export was produced
type ReportMetadata struct {
	GeneratedAt     string          `json:"generatedAt"`
	ClinicalSummary ClinicalSummary `json:"clinicalSummary"`
}

// Export is the downloadable health report artifact
type Export struct {
	Patient        PatientInfo    `json:"patient"`
	Biomarkers     Dataset        `json:"biomarkers"`
	Summary        Summary        `json:"summary"`
	ReportMetadata ReportMetadata `json:"reportMetadata"`
}

// BuildExport assembles the export artifact for a state.
func BuildExport(state State, now time.Time) Export {
	return Export{
		Patient:    state.Patient,
		Biomarkers: state.Dataset.Clone(),
		Summary:    Summarize(state.Dataset),
		ReportMetadata: ReportMetadata{
			GeneratedAt:     now.UTC().Format(time.RFC3339Nano),
			ClinicalSummary: Clinical(state.Dataset),
		},
	}
}

// ExportFilename returns the download name for a patient's export.
func ExportFilename(p PatientInfo, now time.Time) string {
	name := strings.Join(strings.Fields(p.Name), "-")
	if name == "" {
		name = "patient"
	}

	// Keep the name safe for a Content-Disposition header.
	name = strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r == '/' || r < 0x20 {
			return -1
		}
		return r
	}, name)

	return fmt.Sprintf("health-report-%s-%s.json", name, now.UTC().Format(DateLayout))
}

// ParseExport decodes an export artifact back into a state. Every biomarker
// must be keyed by its own name.
func ParseExport(data []byte) (State, error) {
	var exp Export
	if err := json.Unmarshal(data, &exp); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}

	if len(exp.Biomarkers) == 0 {
		return State{}, fmt.Errorf("%w: no biomarkers", ErrInvalidExport)
	}

	for key, b := range exp.Biomarkers {
		if b.Name != key {
			return State{}, fmt.Errorf("%w: biomarker %q is stored under %q", ErrInvalidExport, b.Name, key)
		}

		if len(b.History) > HistoryWindow {
			return State{}, fmt.Errorf("%w: biomarker %q has %d history entries", ErrInvalidExport, key, len(b.History))
		}
	}

	return State{Patient: exp.Patient, Dataset: exp.Biomarkers}, nil
}
