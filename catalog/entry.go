// Package catalog holds the drug reference table used for levodopa
// equivalent daily dose (LEDD) computation and proposal synthesis
package catalog

import (
	"fmt"
	"strings"
)

// Category is the pharmacological class of a reference entry
type Category string

const (
	CategoryLDOPA   Category = "LDOPA"
	CategoryAgonist Category = "AGONIST"
	CategoryMAOB    Category = "MAOB"
	CategoryCOMT    Category = "COMT"
	CategoryOther   Category = "OTHER"
)

// CategoryOrder is the display order of drug sections
var CategoryOrder = []Category{CategoryLDOPA, CategoryAgonist, CategoryMAOB, CategoryCOMT, CategoryOther}

var categoryLabels = map[Category]string{
	CategoryLDOPA:   "L-dopa preparations",
	CategoryAgonist: "Dopamine agonists",
	CategoryMAOB:    "MAO-B inhibitors",
	CategoryCOMT:    "COMT inhibitors",
	CategoryOther:   "Other",
}

// Label returns the section heading for the category
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory parses a category name, case-insensitively
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Mode governs how a dose converts to an equivalence value
type Mode string

const (
	// ModeDirect: dose x administrations per day x factor
	ModeDirect Mode = "DIRECT"
	// ModeMultiplyBase: no own contribution, scales the L-dopa subtotal
	ModeMultiplyBase Mode = "MULTIPLY_BASE"
	// ModeFixed: intended flat contribution, currently always zero
	ModeFixed Mode = "FIXED"
)

// Valid reports whether m is one of the known modes
func (m Mode) Valid() bool {
	switch m {
	case ModeDirect, ModeMultiplyBase, ModeFixed:
		return true
	}
	return false
}

// ParseMode parses a mode name. MULTIPLY_LDOPA is accepted as an alias of
// MULTIPLY_BASE for older catalog files
func ParseMode(s string) (Mode, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "MULTIPLY_LDOPA" {
		return ModeMultiplyBase, nil
	}
	m := Mode(v)
	if !m.Valid() {
		return "", fmt.Errorf("unknown LEDD mode %q", s)
	}
	return m, nil
}

// Titration describes how an agonist formulation is stepped up. Either Rungs
// (a discrete strength ladder) or Step (a fixed increment) is set
type Titration struct {
	Label  string    `json:"label"`
	Rungs  []float64 `json:"rungs,omitempty"`
	Step   float64   `json:"step,omitempty"`
	Max    float64   `json:"max"`
	Suffix string    `json:"suffix,omitempty"`
}

// Next returns the next dose above current, capped at Max. ok is false when
// the current dose is already at or above Max
func (t *Titration) Next(current float64) (next float64, ok bool) {
	if t == nil || current >= t.Max {
		return 0, false
	}
	if len(t.Rungs) > 0 {
		for _, r := range t.Rungs {
			if r > current {
				return min(r, t.Max), true
			}
		}
		return t.Max, true
	}
	if t.Step <= 0 {
		return 0, false
	}
	return min(current+t.Step, t.Max), true
}

// Entry is one row of the drug reference table
type Entry struct {
	ID              string     `json:"id"`
	DisplayName     string     `json:"displayName"`
	Brands          []string   `json:"brands"`
	Category        Category   `json:"category"`
	Unit            string     `json:"unit"`
	Mode            Mode       `json:"leddMode"`
	Factor          float64    `json:"leddFactor"`
	BaseMultiplier  float64    `json:"baseMultiplier"`
	MaxSingleDose   float64    `json:"maxSingleDose"`
	MaxDailyDose    float64    `json:"maxDailyDose"`
	Warnings        string     `json:"warnings"`
	Active          bool       `json:"active"`
	ExtendedRelease bool       `json:"extendedRelease"`
	Enteral         bool       `json:"enteral"`
	LongActing      bool       `json:"longActing"`
	ExampleBrand    string     `json:"-"`
	Titration       *Titration `json:"titration,omitempty"`
}

// PrimaryBrand returns the canonical (first) brand, or the display name when
// the entry carries no brand
func (e Entry) PrimaryBrand() string {
	for _, b := range e.Brands {
		if b = strings.TrimSpace(b); b != "" {
			return b
		}
	}
	return e.DisplayName
}

// ExampleLabel is the brand used when the entry is quoted in proposal text
func (e Entry) ExampleLabel() string {
	if e.ExampleBrand != "" {
		return e.ExampleBrand
	}
	return e.PrimaryBrand()
}

func (e Entry) clone() Entry {
	c := e
	c.Brands = append([]string(nil), e.Brands...)
	if e.Titration != nil {
		t := *e.Titration
		t.Rungs = append([]float64(nil), e.Titration.Rungs...)
		c.Titration = &t
	}
	return c
}
