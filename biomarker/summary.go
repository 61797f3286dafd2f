/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import "math"

// Direction says which way a biomarker should move to improve
type Direction int

// Directions.
const (
	DirectionNone Direction = iota
	HigherIsBetter
	LowerIsBetter
)

var directions = map[string]Direction{
	"HDL Cholesterol":   HigherIsBetter,
	"Vitamin D":         HigherIsBetter,
	"Hemoglobin":        HigherIsBetter,
	"Vitamin B12":       HigherIsBetter,
	"Total Cholesterol": LowerIsBetter,
	"LDL Cholesterol":   LowerIsBetter,
	"Triglycerides":     LowerIsBetter,
	"Creatinine":        LowerIsBetter,
	"HbA1c":             LowerIsBetter,
}

// DirectionOf returns the improvement direction of a biomarker.
func DirectionOf(name string) Direction {
	return directions[name]
}

// lastTwo returns the two most recent history values when both are usable.
func (b Biomarker) lastTwo() (previous, latest float64, ok bool) {
	n := len(b.History)
	if n < 2 || !b.History[n-1].HasValue() || !b.History[n-2].HasValue() {
		return 0, 0, false
	}

	return *b.History[n-2].Value, *b.History[n-1].Value, true
}

// Improving reports whether the latest reading moved in the good direction.
func (b Biomarker) Improving() bool {
	previous, latest, ok := b.lastTwo()
	if !ok {
		return false
	}

	switch DirectionOf(b.Name) {
	case HigherIsBetter:
		return latest > previous
	case LowerIsBetter:
		return latest < previous
	default:
		return false
	}
}

// Changed reports whether the last two readings differ.
func (b Biomarker) Changed() bool {
	previous, latest, ok := b.lastTwo()
	return ok && previous != latest
}

// Summary holds the dashboard headline counts
type Summary struct {
	Total       int    `json:"total"`
	Normal      int    `json:"normal"`
	OutOfRange  int    `json:"outOfRange"`
	Improving   int    `json:"improving"`
	HealthScore int    `json:"healthScore"`
	ScoreBand   string `json:"scoreBand"`
}

// Summarize computes the headline counts for a dataset.
func Summarize(d Dataset) Summary {
	var s Summary

	for _, b := range d {
		s.Total++

		switch status := b.CurrentValue.Status; {
		case status == StatusNormal:
			s.Normal++
		case status.IsOutOfRange():
			s.OutOfRange++
		}

		if b.Improving() {
			s.Improving++
		}
	}

	if s.Total > 0 {
		s.HealthScore = int(math.Round(float64(s.Normal) / float64(s.Total) * 100))
	}

	switch {
	case s.HealthScore >= 80:
		s.ScoreBand = "good"
	case s.HealthScore >= 60:
		s.ScoreBand = "fair"
	default:
		s.ScoreBand = "poor"
	}

	return s
}

// riskRules flag a risk factor when a biomarker's current status matches.
var riskRules = []struct {
	name   string
	status Status
	label  string
}{
	{"HDL Cholesterol", StatusLow, "Low HDL Cholesterol"},
	{"Triglycerides", StatusHigh, "Elevated Triglycerides"},
	{"Creatinine", StatusHigh, "Kidney Function"},
	{"HbA1c", StatusHigh, "Prediabetes"},
	{"RBC Count", StatusHigh, "Elevated RBC Count"},
}

// RiskFactors returns the labels of the risk rules the dataset triggers.
func RiskFactors(d Dataset) []string {
	risks := []string{}

	for _, rule := range riskRules {
		if b, ok := d[rule.name]; ok && b.CurrentValue.Status == rule.status {
			risks = append(risks, rule.label)
		}
	}

	return risks
}

// ClinicalSummary lists abnormal and changing biomarkers
type ClinicalSummary struct {
	RiskFactors  []string `json:"riskFactors"`
	Improvements []string `json:"improvements"`
}

// Clinical returns the biomarkers currently High or Low and those whose last
// two readings differ, both in sorted order.
func Clinical(d Dataset) ClinicalSummary {
	cs := ClinicalSummary{RiskFactors: []string{}, Improvements: []string{}}

	for _, name := range d.Names() {
		b := d[name]

		if status := b.CurrentValue.Status; status == StatusHigh || status == StatusLow {
			cs.RiskFactors = append(cs.RiskFactors, name)
		}

		if b.Changed() {
			cs.Improvements = append(cs.Improvements, name)
		}
	}

	return cs
}

// RangeStatus classifies a value against its reference range for display.
// It never feeds back into the stored status.
type RangeStatus string

// Range statuses.
const (
	RangeNormal         RangeStatus = "normal"
	RangeOutOfReference RangeStatus = "out_of_reference"
	RangeOutOfOptimal   RangeStatus = "out_of_optimal"
	RangeNoValue        RangeStatus = "no_value"
)

// Classify compares the current value against the reference range and, when
// one is set, the optimal target.
func (b Biomarker) Classify() RangeStatus {
	r := b.CurrentValue
	if !r.HasValue() {
		return RangeNoValue
	}

	v := *r.Value
	rr := r.ReferenceRange

	if v < rr.Min || (rr.Max > rr.Min && v > rr.Max) {
		return RangeOutOfReference
	}

	if rr.Optimal != nil {
		switch DirectionOf(b.Name) {
		case HigherIsBetter:
			if v < *rr.Optimal {
				return RangeOutOfOptimal
			}
		case LowerIsBetter:
			if v > *rr.Optimal {
				return RangeOutOfOptimal
			}
		}
	}

	return RangeNormal
}

// RangeStatuses classifies every biomarker in the dataset.
func RangeStatuses(d Dataset) map[string]RangeStatus {
	out := make(map[string]RangeStatus, len(d))
	for name, b := range d {
		out[name] = b.Classify()
	}

	return out
}
