/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import "strings"

// aliases maps lower-cased names used on lab reports to dataset keys.
var aliases = map[string]string{
	"hdl":                     "HDL Cholesterol",
	"hdl-c":                   "HDL Cholesterol",
	"hdl cholesterol, direct": "HDL Cholesterol",
	"ldl":                     "LDL Cholesterol",
	"ldl-c":                   "LDL Cholesterol",
	"ldl cholesterol, direct": "LDL Cholesterol",
	"cholesterol":             "Total Cholesterol",
	"cholesterol, total":      "Total Cholesterol",
	"serum cholesterol":       "Total Cholesterol",
	"tg":                      "Triglycerides",
	"triglyceride":            "Triglycerides",
	"hb":                      "Hemoglobin",
	"hgb":                     "Hemoglobin",
	"haemoglobin":             "Hemoglobin",
	"rbc":                     "RBC Count",
	"red blood cells":         "RBC Count",
	"red blood cell count":    "RBC Count",
	"wbc":                     "WBC Count",
	"white blood cells":       "WBC Count",
	"total leucocyte count":   "WBC Count",
	"tlc":                     "WBC Count",
	"a1c":                     "HbA1c",
	"hemoglobin a1c":          "HbA1c",
	"glycated hemoglobin":     "HbA1c",
	"glycosylated hemoglobin": "HbA1c",
	"serum creatinine":        "Creatinine",
	"vitamin d3":              "Vitamin D",
	"vitamin d total":         "Vitamin D",
	"25-oh vitamin d":         "Vitamin D",
	"25-hydroxy vitamin d":    "Vitamin D",
	"vitamin b-12":            "Vitamin B12",
	"cyanocobalamin":          "Vitamin B12",
}

// Resolve returns the dataset key for an incoming biomarker name. An exact
// key wins, then the alias table, then a case-insensitive key match.
func (d Dataset) Resolve(name string) (string, bool) {
	if _, ok := d[name]; ok {
		return name, true
	}

	folded := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if folded == "" {
		return "", false
	}

	if canonical, ok := aliases[folded]; ok {
		if _, exists := d[canonical]; exists {
			return canonical, true
		}
	}

	for key := range d {
		if strings.ToLower(key) == folded {
			return key, true
		}
	}

	return "", false
}
