// Package validation checks API request payloads and reports quality issues
// in loaded drug reference tables
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/dopaplan/dopaplan-api/catalog"
	"github.com/dopaplan/dopaplan-api/interfaces"
	"github.com/dopaplan/dopaplan-api/ledd"
	"github.com/dopaplan/dopaplan-api/timeline"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxPrescriptionRows bounds the regimen size accepted per request
	MaxPrescriptionRows = 50
	MaxInputLength      = 100
	MaxDose             = 100000
	MaxFreq             = 24
)

// Pre-compiled regex patterns, compiled once at package initialization
var (
	// Drug names: letters in any script, digits and the punctuation used in
	// reference table names such as "Duodopa (Levodopa/Carbidopa enteral gel)"
	inputRegex = regexp.MustCompile(`^[\p{L}\p{N}\s\-\./()+',%]+$`)

	drugIDRegex = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)

	timeOfDayRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	// strings.Contains is much cheaper than a regex for these
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "eval(", "expression(", "url(", "@import",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"--", "/*", "*/", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$regex:",
	}
)

// Compile-time check to ensure RequestValidatorImpl implements RequestValidator
var _ interfaces.RequestValidator = (*RequestValidatorImpl)(nil)

// RequestValidatorImpl implements interfaces.RequestValidator
type RequestValidatorImpl struct{}

// NewRequestValidator creates a new request validator
func NewRequestValidator() *RequestValidatorImpl {
	return &RequestValidatorImpl{}
}

// ValidateInput checks a free-text value such as a drug display name. The
// value is NFKC folded first, the same way catalog lookups fold it, so
// full-width IME input passes the ASCII punctuation class
func (v *RequestValidatorImpl) ValidateInput(input string) error {
	input = norm.NFKC.String(input)

	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) > MaxInputLength {
		return fmt.Errorf("input too long: maximum %d characters", MaxInputLength)
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces and - . / ( ) + ' , %% are allowed")
	}

	if v.hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateDrugID checks a catalog identifier taken from the URL
func (v *RequestValidatorImpl) ValidateDrugID(id string) error {
	if !drugIDRegex.MatchString(id) {
		return fmt.Errorf("invalid drug id: use 1 to 64 letters, digits, '_' or '-'")
	}
	return nil
}

// ValidatePrescriptions checks the rows of a regimen. Unfilled rows (empty
// display name) are allowed and skipped by the calculator
func (v *RequestValidatorImpl) ValidatePrescriptions(rows []ledd.PrescriptionEntry) error {
	if len(rows) > MaxPrescriptionRows {
		return fmt.Errorf("too many prescription rows: %d (maximum %d)", len(rows), MaxPrescriptionRows)
	}

	for i, row := range rows {
		if err := v.validateRow(row); err != nil {
			return fmt.Errorf("prescription %d: %w", i+1, err)
		}
	}
	return nil
}

func (v *RequestValidatorImpl) validateRow(row ledd.PrescriptionEntry) error {
	if row.DrugID != "" {
		if err := v.ValidateDrugID(row.DrugID); err != nil {
			return err
		}
	}

	if row.DisplayName != "" {
		if err := v.ValidateInput(row.DisplayName); err != nil {
			return fmt.Errorf("display name: %w", err)
		}
	}

	// Zero or negative doses and frequencies are partial input: the
	// calculator resolves them to 0 / OTHER and once a day
	if math.IsNaN(row.Dose) || math.IsInf(row.Dose, 0) {
		return fmt.Errorf("dose must be a finite number")
	}
	if row.Dose > MaxDose {
		return fmt.Errorf("dose too large: maximum %d", MaxDose)
	}
	if row.Freq > MaxFreq {
		return fmt.Errorf("frequency too large: maximum %d", MaxFreq)
	}

	if len(row.Times) > MaxFreq {
		return fmt.Errorf("too many administration times: maximum %d", MaxFreq)
	}
	for _, t := range row.Times {
		if !timeOfDayRegex.MatchString(t) {
			return fmt.Errorf("invalid administration time %q: expected HH:MM", t)
		}
	}
	return nil
}

// ValidateTimeline accepts either no slots or one value per hour of the day
func (v *RequestValidatorImpl) ValidateTimeline(off, dyskinesia []bool) error {
	if err := checkSlots("off", off); err != nil {
		return err
	}
	return checkSlots("dyskinesia", dyskinesia)
}

func checkSlots(name string, slots []bool) error {
	if len(slots) != 0 && len(slots) != timeline.SlotsPerDay {
		return fmt.Errorf("%s timeline must have 0 or %d slots, got %d", name, timeline.SlotsPerDay, len(slots))
	}
	return nil
}

// ReportCatalogQuality lists entries that load but deserve attention
func (v *RequestValidatorImpl) ReportCatalogQuality(c *catalog.Catalog) *interfaces.CatalogQualityReport {
	report := &interfaces.CatalogQualityReport{}
	if c == nil {
		return report
	}

	for _, e := range c.Entries() {
		if e.Mode == catalog.ModeFixed {
			report.FixedModeIDs = append(report.FixedModeIDs, e.ID)
		}
		if len(e.Brands) == 0 {
			report.MissingBrandIDs = append(report.MissingBrandIDs, e.ID)
		}
		if !e.Active {
			report.InactiveIDs = append(report.InactiveIDs, e.ID)
		}
		if e.Category == catalog.CategoryAgonist && e.LongActing && e.Titration == nil {
			report.UntitratedAgonistID = append(report.UntitratedAgonistID, e.ID)
		}
	}

	return report
}

// hasExcessiveRepetition reports the same character repeated more than 10 times in a row
func (v *RequestValidatorImpl) hasExcessiveRepetition(input string) bool {
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
