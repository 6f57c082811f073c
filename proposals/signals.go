package proposals

import (
	"math"
	"strconv"
	"strings"

	"github.com/dopaplan/dopaplan-api/catalog"
	"github.com/dopaplan/dopaplan-api/ledd"
	"github.com/dopaplan/dopaplan-api/timeline"
)

const (
	// Used when no agonist is prescribed
	startingAgonistExamples = "BI-Sifrol L/A 0.375mg once daily to start, Requip CR 2mg once daily to start, Neupro 4.5mg one patch daily"

	// Used when agonists are prescribed but none can be stepped up
	canonicalAgonistExamples = "BI-Sifrol L/A 0.375mg once daily, Requip CR 2mg once daily, Neupro 4.5mg one patch daily"

	defaultLdopaBrand = "L-dopa"
	defaultLdopaDose  = 100.0
	defaultLdopaFreq  = 3
)

// signals is everything the rules branch on, derived once per request
type signals struct {
	hasActive bool
	total     float64

	offRanges  string
	dyskRanges string
	hasOff     bool
	hasDysk    bool

	regimen        Regimen
	hasAgonist     bool
	hasLongAgonist bool
	hasCOMT        bool
	hasMAOB        bool
	agonistNames   []string
	agonistExample string

	ldopaBrand string
	ldopaDose  float64
	ldopaFreq  int

	companion CompanionSymptoms
}

func (e *Engine) derive(summary ledd.Summary, tl timeline.Timeline, companion CompanionSymptoms, entries []ledd.EntryWithEquivalence) signals {
	s := signals{
		total:      summary.Total,
		offRanges:  tl.OffRanges(),
		dyskRanges: tl.DyskinesiaRanges(),
		hasOff:     tl.Off.Any(),
		hasDysk:    tl.Dyskinesia.Any(),
		regimen:    RegimenNone,
		ldopaBrand: defaultLdopaBrand,
		ldopaDose:  defaultLdopaDose,
		ldopaFreq:  defaultLdopaFreq,
		companion:  companion,
	}

	var hasLdopa, hasER, hasEnteral, firstLdopaSeen bool
	for _, row := range entries {
		if !row.Filled() {
			continue
		}
		s.hasActive = true
		drug, known := e.catalog.Lookup(row.DisplayName)

		switch row.Category {
		case catalog.CategoryLDOPA:
			hasLdopa = true
			if known && drug.Enteral {
				hasEnteral = true
			}
			if known && drug.ExtendedRelease {
				hasER = true
			}
			if !firstLdopaSeen {
				firstLdopaSeen = true
				if known {
					s.ldopaBrand = drug.ExampleLabel()
				}
				s.ldopaDose = row.Dose
				s.ldopaFreq = row.AdministrationsPerDay()
			}
		case catalog.CategoryAgonist:
			s.hasAgonist = true
			s.agonistNames = append(s.agonistNames, row.DisplayName)
			if known && drug.LongActing {
				s.hasLongAgonist = true
			}
		case catalog.CategoryCOMT:
			s.hasCOMT = true
		case catalog.CategoryMAOB:
			s.hasMAOB = true
		}
	}

	switch {
	case hasEnteral:
		s.regimen = RegimenDuodopa
	case hasER:
		s.regimen = RegimenERMixed
	case hasLdopa:
		s.regimen = RegimenIROnly
	}

	s.agonistExample = e.agonistExample(entries)
	return s
}

// agonistExample proposes the next titration step for every prescribed
// agonist that has one
func (e *Engine) agonistExample(entries []ledd.EntryWithEquivalence) string {
	var examples []string
	hasAgonist := false
	for _, row := range entries {
		if !row.Filled() || row.Category != catalog.CategoryAgonist {
			continue
		}
		hasAgonist = true
		drug, ok := e.catalog.Lookup(row.DisplayName)
		if !ok || drug.Titration == nil {
			continue
		}
		next, ok := drug.Titration.Next(row.Dose)
		if !ok {
			continue
		}
		examples = append(examples, drug.Titration.Label+" "+formatDose(row.Dose)+"mg → "+formatDose(next)+"mg"+drug.Titration.Suffix)
	}

	switch {
	case !hasAgonist:
		return startingAgonistExamples
	case len(examples) > 0:
		return strings.Join(examples, ", ")
	default:
		return canonicalAgonistExamples
	}
}

func (s signals) agonistList() string {
	return strings.Join(s.agonistNames, ", ")
}

// formatDose prints a dose without trailing zeros
func formatDose(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
