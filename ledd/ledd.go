// Package ledd computes levodopa equivalent daily doses for a prescription
// list against a drug reference catalog
package ledd

import (
	"github.com/dopaplan/dopaplan-api/catalog"
)

// PrescriptionEntry is one regimen line as entered by the clinician
type PrescriptionEntry struct {
	DrugID      string   `json:"drugId,omitempty"`
	DisplayName string   `json:"displayName"`
	Dose        float64  `json:"dose"`
	Freq        int      `json:"freq"`
	Times       []string `json:"times,omitempty"`
}

// Filled reports whether the row names a drug with a positive dose
func (p PrescriptionEntry) Filled() bool {
	return p.DisplayName != "" && p.Dose > 0
}

// AdministrationsPerDay returns Freq, treating unset or invalid values as 1
func (p PrescriptionEntry) AdministrationsPerDay() int {
	if p.Freq > 0 {
		return p.Freq
	}
	return 1
}

// EntryWithEquivalence is a prescription row with its computed LEDD
type EntryWithEquivalence struct {
	PrescriptionEntry
	LEDD     float64          `json:"leddValue"`
	Category catalog.Category `json:"category"`
}

// Summary aggregates LEDD per bucket. Total is always the sum of the other
// three fields
type Summary struct {
	LdopaAdjusted float64 `json:"ldopaAdjusted"`
	Agonist       float64 `json:"agonist"`
	Other         float64 `json:"other"`
	Total         float64 `json:"total"`
}

// ComputeEntries returns one EntryWithEquivalence per row, in order. Rows
// that are unfilled or name an unknown drug resolve to 0 / OTHER
func ComputeEntries(cat *catalog.Catalog, rows []PrescriptionEntry) []EntryWithEquivalence {
	out := make([]EntryWithEquivalence, 0, len(rows))
	for _, row := range rows {
		out = append(out, computeEntry(cat, row))
	}
	return out
}

func computeEntry(cat *catalog.Catalog, row PrescriptionEntry) EntryWithEquivalence {
	res := EntryWithEquivalence{PrescriptionEntry: row, Category: catalog.CategoryOther}
	res.Times = append([]string(nil), row.Times...)

	if !row.Filled() {
		return res
	}
	drug, ok := cat.Lookup(row.DisplayName)
	if !ok {
		return res
	}

	res.Category = drug.Category
	switch drug.Mode {
	case catalog.ModeDirect:
		res.LEDD = row.Dose * float64(row.AdministrationsPerDay()) * drug.Factor
	case catalog.ModeMultiplyBase, catalog.ModeFixed:
		// MULTIPLY_BASE acts on the L-dopa subtotal in ComputeSummary.
		// FIXED has no numeric contribution yet
		res.LEDD = 0
	}
	return res
}

// ComputeSummary aggregates computed rows. Concurrent COMT inhibitors do not
// compound: only the largest base multiplier is applied to the L-dopa
// subtotal
func ComputeSummary(cat *catalog.Catalog, entries []EntryWithEquivalence) Summary {
	var ldopa, agonist, other float64
	multiplier := 1.0

	for _, e := range entries {
		switch e.Category {
		case catalog.CategoryLDOPA:
			ldopa += e.LEDD
		case catalog.CategoryAgonist:
			agonist += e.LEDD
		case catalog.CategoryMAOB, catalog.CategoryOther:
			other += e.LEDD
		case catalog.CategoryCOMT:
			drug, ok := cat.Lookup(e.DisplayName)
			if ok && drug.Mode == catalog.ModeMultiplyBase && drug.BaseMultiplier > multiplier {
				multiplier = drug.BaseMultiplier
			}
		}
	}

	adjusted := ldopa * multiplier
	return Summary{
		LdopaAdjusted: adjusted,
		Agonist:       agonist,
		Other:         other,
		Total:         adjusted + agonist + other,
	}
}

// ComputeAll runs ComputeEntries followed by ComputeSummary
func ComputeAll(cat *catalog.Catalog, rows []PrescriptionEntry) ([]EntryWithEquivalence, Summary) {
	entries := ComputeEntries(cat, rows)
	return entries, ComputeSummary(cat, entries)
}
