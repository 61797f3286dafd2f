/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

// SkipReason explains why an incoming biomarker was not applied
type SkipReason string

// Skip reasons reported in MergeResult.
const (
	SkipUnknownBiomarker SkipReason = "unknown_biomarker"
	SkipUnparseableValue SkipReason = "unparseable_value"
	SkipDuplicate        SkipReason = "duplicate_biomarker"
	SkipMalformedEntry   SkipReason = "malformed_entry"
)

// Skipped is one incoming biomarker that was left out of a merge
type Skipped struct {
	Name   string     `json:"name"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// MergeResult lists which incoming biomarkers were applied and which were not.
type MergeResult struct {
	Applied []string  `json:"applied"`
	Skipped []Skipped `json:"skipped"`
}

// Updated reports whether the merge changed at least one biomarker.
func (r MergeResult) Updated() bool {
	return len(r.Applied) > 0
}

// Message returns the user-facing outcome of the merge.
func (r MergeResult) Message() string {
	if !r.Updated() {
		return "No new biomarker data found in the report."
	}

	return fmt.Sprintf("Report processed successfully. Updated %d biomarker(s).", len(r.Applied))
}

// State is everything the dashboard knows about one patient.
type State struct {
	Patient PatientInfo `json:"patientInfo"`
	Dataset Dataset     `json:"biomarkers"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return State{Patient: s.Patient, Dataset: s.Dataset.Clone()}
}

// Reconcile folds an extraction payload into state and returns the new
// state. The input state is never modified. An invalid payload fails the
// whole merge with ErrInvalidExtraction; problems with individual entries
// are reported in the result instead.
func Reconcile(state State, ext *Extraction, now time.Time) (State, MergeResult, error) {
	if err := ext.Validate(); err != nil {
		return state, MergeResult{}, err
	}

	date, fromReport := ext.EffectiveReportDate()
	if !fromReport {
		date = now.Format(DateLayout)
	}

	next := State{
		Patient: overlayPatient(state.Patient, ext, date, fromReport),
		Dataset: state.Dataset.Clone(),
	}

	result := MergeResult{Applied: []string{}, Skipped: []Skipped{}}

	names := make([]string, 0, len(ext.Biomarkers))
	for name := range ext.Biomarkers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		in := ext.Biomarkers[name]

		key, ok := next.Dataset.Resolve(name)
		if !ok {
			logger.Debug("Skipping unknown biomarker", "name", name)
			result.Skipped = append(result.Skipped, Skipped{Name: name, Reason: SkipUnknownBiomarker})

			continue
		}

		if err := in.Err(); err != nil {
			logger.Debug("Skipping malformed biomarker entry", "name", name, "error", err)
			result.Skipped = append(result.Skipped, Skipped{Name: name, Reason: SkipMalformedEntry, Detail: err.Error()})

			continue
		}

		value, err := in.Value.Float()
		if err != nil {
			logger.Debug("Skipping biomarker value", "name", name, "error", err)
			result.Skipped = append(result.Skipped, Skipped{Name: name, Reason: SkipUnparseableValue, Detail: err.Error()})

			continue
		}

		if slices.Contains(result.Applied, key) {
			result.Skipped = append(result.Skipped, Skipped{
				Name:   name,
				Reason: SkipDuplicate,
				Detail: "already applied as " + key,
			})

			continue
		}

		current := next.Dataset[key]
		next.Dataset[key] = current.withReading(newReading(current.CurrentValue, in, value, date))
		result.Applied = append(result.Applied, key)
	}

	logger.Info("Merged extraction",
		"applied", len(result.Applied),
		"skipped", len(result.Skipped),
		"date", date,
	)

	return next, result, nil
}

func newReading(previous Reading, in ExtractedReading, value float64, date string) Reading {
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = previous.Unit
	}

	status, ok := ParseStatus(in.Status)
	if !ok {
		status = StatusUnknown
	}

	trend, ok := ParseTrend(in.Trend)
	if !ok {
		trend = TrendStable
	}

	return Reading{
		Value:          &value,
		Unit:           unit,
		Status:         status,
		Trend:          trend,
		Date:           date,
		ReferenceRange: previous.ReferenceRange,
	}
}

func overlayPatient(p PatientInfo, ext *Extraction, date string, fromReport bool) PatientInfo {
	in := ext.patientBlock()

	if in != nil {
		if v := strings.TrimSpace(in.Name); v != "" {
			p.Name = v
		}

		if age, ok := parseAge(in.Age); ok {
			p.Age = age
		} else if strings.TrimSpace(string(in.Age)) != "" {
			logger.Debug("Ignoring patient age", "age", string(in.Age))
		}

		gender := strings.TrimSpace(in.Gender)
		if gender == "" {
			gender = strings.TrimSpace(in.Sex)
		}
		if gender != "" {
			p.Gender = gender
		}

		if v := strings.TrimSpace(in.ID); v != "" {
			p.ID = v
		}
	}

	switch {
	case fromReport:
		p.ReportDate = date
		p.LastUpdated = date
	case in != nil && strings.TrimSpace(in.LastUpdated) != "":
		p.LastUpdated = strings.TrimSpace(in.LastUpdated)
	}

	return p
}

// parseAge accepts whole or fractional years ("57", "57.0", 57.5) and
// truncates to whole years. Ages outside 1..150 are rejected.
func parseAge(v RawValue) (int, bool) {
	years, err := v.Float()
	if err != nil || years < 1 || years > 150 {
		return 0, false
	}

	return int(years), true
}
