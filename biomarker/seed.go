/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

// ptr is a helper to create pointers to float64 literals
func ptr(f float64) *float64 {
	return &f
}

// seedSeries builds a biomarker whose current value is the last history entry.
func seedSeries(name, category string, rr ReferenceRange, unit string, readings ...Reading) Biomarker {
	history := make([]Reading, 0, len(readings))
	for _, r := range readings {
		r.Unit = unit
		r.ReferenceRange = rr
		history = append(history, r)
	}

	return Biomarker{
		Name:         name,
		Category:     category,
		CurrentValue: history[len(history)-1],
		History:      history,
	}
}

func seedReading(value float64, status Status, trend Trend, date string) Reading {
	return Reading{Value: ptr(value), Status: status, Trend: trend, Date: date}
}

// SeedPatient returns the patient the seed dataset was recorded for.
func SeedPatient() PatientInfo {
	return PatientInfo{
		Name:        "Mr. Manjunath Swamy",
		Age:         56,
		Gender:      "Male",
		ID:          "KAL5954",
		LastUpdated: "2025-04-05",
	}
}

// SeedDataset returns a fresh copy of the initial biomarker dataset. Its key
// set is the closed set of biomarkers that extraction can update.
func SeedDataset() Dataset {
	biomarkers := []Biomarker{
		// ===== COMPLETE BLOOD COUNT =====
		withNotes(seedSeries("Hemoglobin", "Complete Blood Count",
			ReferenceRange{Min: 13.0, Max: 17.0, Optimal: ptr(15.0)}, "g/dL",
			seedReading(14.8, StatusNormal, TrendStable, "2024-06-15"),
			seedReading(15.0, StatusNormal, TrendUp, "2024-09-10"),
			seedReading(15.2, StatusNormal, TrendStable, "2025-04-05"),
		),
			"Protein in red blood cells that carries oxygen",
			"Normal hemoglobin levels indicate good oxygen-carrying capacity",
			"Maintain iron-rich diet", "Continue regular exercise",
		),
		withNotes(seedSeries("RBC Count", "Complete Blood Count",
			ReferenceRange{Min: 4.5, Max: 5.5, Optimal: ptr(5.0)}, "million/cmm",
			seedReading(5.45, StatusNormal, TrendStable, "2024-06-15"),
			seedReading(5.62, StatusHigh, TrendUp, "2024-09-10"),
			seedReading(5.83, StatusHigh, TrendUp, "2025-04-05"),
		),
			"Number of red blood cells per unit volume",
			"Elevated RBC count may indicate polycythemia - requires monitoring",
			"Stay well hydrated", "Monitor blood viscosity", "Regular follow-up",
		),
		withNotes(seedSeries("WBC Count", "Complete Blood Count",
			ReferenceRange{Min: 4.0, Max: 11.0, Optimal: ptr(7.0)}, "thousand/cmm",
			seedReading(7.5, StatusNormal, TrendStable, "2024-06-15"),
			seedReading(7.7, StatusNormal, TrendUp, "2024-09-10"),
			seedReading(7.87, StatusNormal, TrendStable, "2025-04-05"),
		),
			"White blood cells that fight infection",
			"Normal WBC count indicates healthy immune system",
			"Maintain healthy lifestyle", "Regular health check-ups",
		),

		// ===== LIPID PROFILE =====
		withNotes(seedSeries("Total Cholesterol", "Lipid Profile",
			ReferenceRange{Min: 0, Max: 200, Optimal: ptr(180)}, "mg/dL",
			seedReading(185, StatusNormal, TrendStable, "2024-06-15"),
			seedReading(155, StatusNormal, TrendDown, "2024-09-10"),
			seedReading(136, StatusNormal, TrendStable, "2025-04-05"),
		),
			"Total amount of cholesterol in blood",
			"Healthy cholesterol level",
			"Maintain a balanced diet", "Regular physical activity",
		),
		withNotes(seedSeries("HDL Cholesterol", "Lipid Profile",
			ReferenceRange{Min: 40, Max: 100, Optimal: ptr(60)}, "mg/dL",
			seedReading(42, StatusNormal, TrendStable, "2024-06-15"),
			seedReading(39, StatusLow, TrendDown, "2024-09-10"),
			seedReading(36, StatusLow, TrendDown, "2025-04-05"),
		),
			"Good cholesterol that protects against heart disease",
			"Low HDL increases cardiovascular risk - needs attention",
			"Increase omega-3 intake", "Regular aerobic exercise", "Consider niacin supplementation",
		),
		withNotes(seedSeries("LDL Cholesterol", "Lipid Profile",
			ReferenceRange{Min: 0, Max: 100, Optimal: ptr(70)}, "mg/dL",
			seedReading(105, StatusHigh, TrendStable, "2024-06-15"),
			seedReading(80, StatusNormal, TrendDown, "2024-09-10"),
			seedReading(65, StatusNormal, TrendDown, "2025-04-05"),
		),
			"Bad cholesterol that can clog arteries",
			"Good level - lower risk of cardiovascular disease",
			"Maintain healthy fats in diet", "Continue current management",
		),
		withNotes(seedSeries("Triglycerides", "Lipid Profile",
			ReferenceRange{Min: 0, Max: 150, Optimal: ptr(100)}, "mg/dL",
			seedReading(140, StatusNormal, TrendStable, "2024-06-15"),
			seedReading(160, StatusHigh, TrendUp, "2024-09-10"),
			seedReading(177, StatusHigh, TrendUp, "2025-04-05"),
		),
			"Type of fat in blood linked to heart disease",
			"Elevated triglycerides increase cardiovascular risk",
			"Reduce sugar intake", "Increase omega-3", "Exercise regularly",
		),

		// ===== KIDNEY & DIABETES =====
		withNotes(seedSeries("Creatinine", "Kidney Function",
			ReferenceRange{Min: 0.7, Max: 1.18, Optimal: ptr(1.0)}, "mg/dL",
			seedReading(1.10, StatusNormal, TrendStable, "2024-06-15"),
			seedReading(1.15, StatusNormal, TrendUp, "2024-09-10"),
			seedReading(1.18, StatusHigh, TrendUp, "2025-04-05"),
		),
			"Waste product filtered by kidneys",
			"Borderline - requires monitoring",
			"Stay hydrated", "Regular kidney function tests",
		),
		withNotes(seedSeries("HbA1c", "Diabetes Markers",
			ReferenceRange{Min: 0, Max: 5.7, Optimal: ptr(5.0)}, "%",
			seedReading(5.4, StatusNormal, TrendStable, "2024-06-15"),
			seedReading(5.6, StatusNormal, TrendUp, "2024-09-10"),
			seedReading(5.8, StatusHigh, TrendUp, "2025-04-05"),
		),
			"Average blood sugar over past 2-3 months",
			"Prediabetic range - requires lifestyle modification",
			"Reduce carbohydrate intake", "Exercise regularly", "Monitor glucose levels",
		),

		// ===== VITAMINS =====
		withNotes(seedSeries("Vitamin D", "Vitamins",
			ReferenceRange{Min: 30, Max: 100, Optimal: ptr(50)}, "ng/mL",
			seedReading(25, StatusLow, TrendStable, "2024-06-15"),
			seedReading(22, StatusLow, TrendDown, "2024-09-10"),
			seedReading(18.73, StatusLow, TrendDown, "2025-04-05"),
		),
			"Essential vitamin for bone health and immunity",
			"Deficiency may lead to bone weakening",
			"Take supplements", "Increase sun exposure", "Consume vitamin D-rich foods",
		),
		withNotes(seedSeries("Vitamin B12", "Vitamins",
			ReferenceRange{Min: 200, Max: 900, Optimal: ptr(500)}, "pg/mL",
			seedReading(300, StatusNormal, TrendStable, "2024-06-15"),
			seedReading(280, StatusNormal, TrendDown, "2024-09-10"),
			seedReading(259, StatusNormal, TrendStable, "2025-04-05"),
		),
			"Essential vitamin for nerve and red blood cell health",
			"Supports neurological and hematological function",
			"Maintain diet with eggs, dairy, meat", "Monitor if on vegetarian diet",
		),
	}

	dataset := make(Dataset, len(biomarkers))
	for _, b := range biomarkers {
		dataset[b.Name] = b
	}

	return dataset
}

func withNotes(b Biomarker, description, significance string, recommendations ...string) Biomarker {
	b.Description = description
	b.ClinicalSignificance = significance
	b.Recommendations = recommendations
	return b
}
