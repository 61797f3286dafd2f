/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

// GroupMember names a biomarker shown in a group and its series color
type GroupMember struct {
	Name  string
	Color string
}

// GroupSpec describes one display group
type GroupSpec struct {
	Name    string
	Title   string
	Members []GroupMember
}

// DisplayGroups are the fixed chart groups, in display order.
var DisplayGroups = []GroupSpec{
	{
		Name:  "Lipid Profile",
		Title: "Lipid Profile Trends",
		Members: []GroupMember{
			{Name: "Total Cholesterol", Color: "#3b82f6"},
			{Name: "HDL Cholesterol", Color: "#10b981"},
			{Name: "LDL Cholesterol", Color: "#f59e0b"},
			{Name: "Triglycerides", Color: "#ef4444"},
		},
	},
	{
		Name:  "Metabolic Panel",
		Title: "Metabolic & Kidney Function",
		Members: []GroupMember{
			{Name: "Creatinine", Color: "#0891b2"},
			{Name: "HbA1c", Color: "#be185d"},
		},
	},
	{
		Name:  "Vitamins",
		Title: "Vitamin Levels",
		Members: []GroupMember{
			{Name: "Vitamin D", Color: "#f59e0b"},
			{Name: "Vitamin B12", Color: "#8b5cf6"},
		},
	},
}

// Point is one plotted reading
type Point struct {
	Date   string  `json:"date"`
	Value  float64 `json:"value"`
	Status Status  `json:"status"`
}

// Series is the chart data of one group member
type Series struct {
	Name           string          `json:"name"`
	Color          string          `json:"color"`
	Unit           string          `json:"unit"`
	ReferenceRange *ReferenceRange `json:"referenceRange"`
	Points         []Point         `json:"points"`
}

// Group is a display group with its chart series
type Group struct {
	Name   string   `json:"name"`
	Title  string   `json:"title"`
	Series []Series `json:"series"`
}

// Project derives the display groups from a dataset. Members missing from
// the dataset yield an empty series, and readings without a usable value
// are left out.
func Project(d Dataset) []Group {
	groups := make([]Group, 0, len(DisplayGroups))

	for _, def := range DisplayGroups {
		group := Group{
			Name:   def.Name,
			Title:  def.Title,
			Series: make([]Series, 0, len(def.Members)),
		}

		for _, member := range def.Members {
			series := Series{
				Name:   member.Name,
				Color:  member.Color,
				Points: []Point{},
			}

			if b, ok := d[member.Name]; ok {
				rr := b.CurrentValue.ReferenceRange
				series.Unit = b.CurrentValue.Unit
				series.ReferenceRange = &rr

				for _, r := range b.History {
					if !r.HasValue() {
						continue
					}
					series.Points = append(series.Points, Point{Date: r.Date, Value: *r.Value, Status: r.Status})
				}
			}

			group.Series = append(group.Series, series)
		}

		groups = append(groups, group)
	}

	return groups
}
