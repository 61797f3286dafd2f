/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import (
	"math"
	"slices"
	"sort"
	"strings"
)

// HistoryWindow is the number of readings retained per biomarker.
const HistoryWindow = 6

// DateLayout is the canonical observation date format.
const DateLayout = "2006-01-02"

// Status is the clinical classification of a reading
type Status string

// Status values as reported by the extraction service or the seed dataset.
const (
	StatusNormal   Status = "Normal"
	StatusLow      Status = "Low"
	StatusHigh     Status = "High"
	StatusCritical Status = "Critical"
	StatusUnknown  Status = "Unknown"
)

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return StatusNormal, true
	case "low":
		return StatusLow, true
	case "high":
		return StatusHigh, true
	case "critical":
		return StatusCritical, true
	case "unknown":
		return StatusUnknown, true
	}

	return "", false
}

// IsOutOfRange reports whether the status flags an abnormal reading.
func (s Status) IsOutOfRange() bool {
	return s == StatusLow || s == StatusHigh || s == StatusCritical
}

// Trend is the direction of a reading relative to the previous one
type Trend string

// Trend values. Both the clinical (improving/declining) and the directional
// (up/down) vocabularies appear in reports.
const (
	TrendStable    Trend = "stable"
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendUp        Trend = "up"
	TrendDown      Trend = "down"
)

// ParseTrend matches s case-insensitively against the known trends.
func ParseTrend(s string) (Trend, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stable":
		return TrendStable, true
	case "improving":
		return TrendImproving, true
	case "declining":
		return TrendDeclining, true
	case "up", "increasing":
		return TrendUp, true
	case "down", "decreasing":
		return TrendDown, true
	}

	return "", false
}

// ReferenceRange holds the clinical range used to classify a reading
type ReferenceRange struct {
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Optimal *float64 `json:"optimal,omitempty"`
}

// Reading is a single observation of a biomarker. Readings are never edited
// in place; a new observation is a new Reading.
type Reading struct {
	Value          *float64       `json:"value"`
	Unit           string         `json:"unit"`
	Status         Status         `json:"status"`
	Trend          Trend          `json:"trend"`
	Date           string         `json:"date"`
	ReferenceRange ReferenceRange `json:"referenceRange"`
}

// HasValue reports whether the reading carries a usable number.
func (r Reading) HasValue() bool {
	return r.Value != nil && !math.IsNaN(*r.Value) && !math.IsInf(*r.Value, 0)
}

// Biomarker is the tracked state of one named lab measurement
type Biomarker struct {
	Name                 string    `json:"name"`
	Category             string    `json:"category"`
	CurrentValue         Reading   `json:"currentValue"`
	History              []Reading `json:"history"`
	Description          string    `json:"description,omitempty"`
	ClinicalSignificance string    `json:"clinicalSignificance,omitempty"`
	Recommendations      []string  `json:"recommendations,omitempty"`
}

// withReading returns a copy of b with r as the current value, appended to a
// fresh history slice that keeps at most HistoryWindow entries.
func (b Biomarker) withReading(r Reading) Biomarker {
	history := make([]Reading, 0, HistoryWindow)

	start := 0
	if len(b.History) >= HistoryWindow {
		start = len(b.History) - (HistoryWindow - 1)
	}
	history = append(history, b.History[start:]...)
	history = append(history, r)

	b.CurrentValue = r
	b.History = history
	b.Recommendations = slices.Clone(b.Recommendations)

	return b
}

func (b Biomarker) clone() Biomarker {
	b.History = slices.Clone(b.History)
	b.Recommendations = slices.Clone(b.Recommendations)
	return b
}

// Dataset maps biomarker names to their tracked state. Its key set is fixed
// by the seed; merges only update existing keys.
type Dataset map[string]Biomarker

// Clone returns a copy of d whose slices are not shared with d.
func (d Dataset) Clone() Dataset {
	out := make(Dataset, len(d))
	for name, b := range d {
		out[name] = b.clone()
	}
	return out
}

// Names returns the dataset keys in sorted order.
func (d Dataset) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PatientInfo identifies the person the dataset belongs to
type PatientInfo struct {
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	ID          string `json:"id"`
	LastUpdated string `json:"lastUpdated"`
	ReportDate  string `json:"reportDate,omitempty"`
}
