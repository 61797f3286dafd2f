/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RawValue holds the textual form of a JSON string or number. The extraction
// service reports values either way, and an empty string when a biomarker
// was not found in the report.
type RawValue string

// UnmarshalJSON accepts a string, a number or null.
func (v *RawValue) UnmarshalJSON(data []byte) error {
	text, err := scalarText(data)
	if err != nil {
		return err
	}
	*v = RawValue(text)

	return nil
}

// scalarText returns the text of a JSON string or number. Absent and null
// values yield "".
func scalarText(data []byte) (string, error) {
	data = bytes.TrimSpace(data)

	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", errNonScalarValue
	}

	return n.String(), nil
}

// LooseText is a scalar metadata field. Values that are not a string or
// number decode as empty instead of failing the payload.
type LooseText string

// UnmarshalJSON accepts anything and keeps only scalar text.
func (t *LooseText) UnmarshalJSON(data []byte) error {
	text, err := scalarText(data)
	if err != nil {
		text = ""
	}
	*t = LooseText(text)

	return nil
}

// Float parses the value as a finite float64.
func (v RawValue) Float() (float64, error) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrUnparseableValue)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableValue, s)
	}

	// ParseFloat accepts "NaN" and "Inf" spellings.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableValue, s)
	}

	return f, nil
}

// ExtractedReading is one biomarker as reported by the extraction service.
// Decoding never fails: an entry of the wrong shape is kept with Err set so
// the reconciler can skip it alone.
type ExtractedReading struct {
	Value  RawValue
	Unit   string
	Status string
	Trend  string

	err error
}

// Err reports why the entry could not be decoded, if it could not.
func (r ExtractedReading) Err() error {
	return r.err
}

// UnmarshalJSON decodes an entry field by field.
func (r *ExtractedReading) UnmarshalJSON(data []byte) error {
	*r = ExtractedReading{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		r.err = errEntryNotObject
		return nil
	}

	targets := []struct {
		key string
		dst *string
	}{
		{"value", (*string)(&r.Value)},
		{"unit", &r.Unit},
		{"status", &r.Status},
		{"trend", &r.Trend},
	}

	for _, target := range targets {
		text, err := scalarText(fields[target.key])
		if err != nil {
			r.err = fmt.Errorf("%s: %w", target.key, err)
			return nil
		}
		*target.dst = text
	}

	return nil
}

// ExtractedPatient is the patient block of an extraction payload. Field
// spellings vary between service versions, so both are accepted.
type ExtractedPatient struct {
	Name            string
	Age             RawValue
	Gender          string
	Sex             string
	ID              string
	LastUpdated     string
	ReportDate      string
	ReportDateSnake string
}

// UnmarshalJSON decodes the patient block leniently. Fields that are not a
// string or number are dropped, and a block that is not an object is empty.
func (p *ExtractedPatient) UnmarshalJSON(data []byte) error {
	*p = ExtractedPatient{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		logger.Debug("Ignoring malformed patient block", "error", err)
		return nil
	}

	targets := map[string]*string{
		"name":        &p.Name,
		"age":         (*string)(&p.Age),
		"gender":      &p.Gender,
		"sex":         &p.Sex,
		"id":          &p.ID,
		"lastUpdated": &p.LastUpdated,
		"reportDate":  &p.ReportDate,
		"report_date": &p.ReportDateSnake,
	}

	for key, dst := range targets {
		raw, ok := fields[key]
		if !ok {
			continue
		}

		text, err := scalarText(raw)
		if err != nil {
			logger.Debug("Ignoring patient field", "field", key, "error", err)
			continue
		}
		*dst = text
	}

	return nil
}

// Extraction is the validated payload returned by the extraction service
type Extraction struct {
	Biomarkers   map[string]ExtractedReading `json:"biomarkers"`
	PatientInfo  *ExtractedPatient           `json:"patientInfo,omitempty"`
	Patient      *ExtractedPatient           `json:"patient,omitempty"`
	PatientSnake *ExtractedPatient           `json:"patient_info,omitempty"`
	ReportDate   LooseText                   `json:"report_date,omitempty"`
	AIScore      LooseText                   `json:"ai_score,omitempty"`
	Timestamp    LooseText                   `json:"timestamp,omitempty"`
	Error        LooseText                   `json:"error,omitempty"`
}

// ParseExtraction decodes and validates an extraction payload. Payloads
// without a non-empty biomarkers mapping are rejected with ErrInvalidExtraction;
// malformed entries inside the mapping are kept for the reconciler to skip.
func ParseExtraction(data []byte) (*Extraction, error) {
	var ext Extraction
	if err := json.Unmarshal(data, &ext); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExtraction, err)
	}

	if err := ext.Validate(); err != nil {
		return nil, err
	}

	return &ext, nil
}

// Validate checks the payload shape required by the reconciler.
func (e *Extraction) Validate() error {
	if e == nil || len(e.Biomarkers) == 0 {
		if e != nil && strings.TrimSpace(string(e.Error)) != "" {
			return fmt.Errorf("%w: %s", ErrInvalidExtraction, e.Error)
		}
		return fmt.Errorf("%w: %w", ErrInvalidExtraction, errMissingBiomarkers)
	}

	return nil
}

// patientBlock returns whichever patient block the payload carries.
func (e *Extraction) patientBlock() *ExtractedPatient {
	switch {
	case e.PatientInfo != nil:
		return e.PatientInfo
	case e.Patient != nil:
		return e.Patient
	default:
		return e.PatientSnake
	}
}

// EffectiveReportDate returns the first report date in the payload that
// parses as a calendar date, normalized to DateLayout.
func (e *Extraction) EffectiveReportDate() (string, bool) {
	candidates := make([]string, 0, 3)
	if p := e.patientBlock(); p != nil {
		candidates = append(candidates, p.ReportDate, p.ReportDateSnake)
	}
	candidates = append(candidates, string(e.ReportDate))

	for _, c := range candidates {
		if d, ok := ParseReportDate(c); ok {
			return d, true
		}
	}

	return "", false
}

// Report dates are day-first, as printed on the lab reports we receive.
var reportDateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseReportDate parses s with the supported report layouts and returns it
// in DateLayout.
func ParseReportDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	for _, layout := range reportDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), true
		}
	}

	return "", false
}
