package validation

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/dopaplan/dopaplan-api/catalog"
	"github.com/dopaplan/dopaplan-api/ledd"
)

func TestValidateInput(t *testing.T) {
	v := NewRequestValidator()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple name", "Ropinirole", false},
		{"name with slash", "Levodopa/Carbidopa", false},
		{"name with parentheses", "Duodopa (Levodopa/Carbidopa enteral gel)", false},
		{"accented name", "Lévodopa", false},
		{"japanese name", "レボドパ", false},
		{"full-width parentheses", "Duodopa（Levodopa/Carbidopa enteral gel）", false},
		{"full-width letters", "Ｒｏｐｉｎｉｒｏｌｅ", false},
		{"full-width invalid character", "Ropinirole＃1", true},
		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("ab", MaxInputLength), true},
		{"script tag", "<script>alert(1)</script>", true},
		{"sql injection", "x' or 1=1", true},
		{"path traversal", "../etc/passwd", true},
		{"invalid character", "Ropinirole#1", true},
		{"repetition", "Ropiniroleeeeeeeeeeee", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateInput(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInput(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDrugID(t *testing.T) {
	v := NewRequestValidator()

	for _, id := range []string{"LDOPA_IR", "ROPINIROLE_CR", "drug-1"} {
		if err := v.ValidateDrugID(id); err != nil {
			t.Errorf("ValidateDrugID(%q) unexpected error: %v", id, err)
		}
	}
	for _, id := range []string{"", "LDOPA IR", "../x", strings.Repeat("A", 65)} {
		if err := v.ValidateDrugID(id); err == nil {
			t.Errorf("ValidateDrugID(%q) expected error", id)
		}
	}
}

func TestValidatePrescriptions(t *testing.T) {
	v := NewRequestValidator()

	tests := []struct {
		name    string
		rows    []ledd.PrescriptionEntry
		wantErr string
	}{
		{"empty regimen", nil, ""},
		{"unfilled row", []ledd.PrescriptionEntry{{}}, ""},
		{"valid row", []ledd.PrescriptionEntry{{DrugID: "LDOPA_IR", DisplayName: "Levodopa/Carbidopa", Dose: 100, Freq: 3, Times: []string{"07:00", "12:00", "18:00"}}}, ""},
		{"negative dose is partial input", []ledd.PrescriptionEntry{{DisplayName: "Ropinirole", Dose: -1, Freq: 1}}, ""},
		{"negative frequency is partial input", []ledd.PrescriptionEntry{{DisplayName: "Ropinirole", Dose: 1, Freq: -1}}, ""},
		{"NaN dose", []ledd.PrescriptionEntry{{DisplayName: "Ropinirole", Dose: math.NaN(), Freq: 1}}, "finite"},
		{"infinite dose", []ledd.PrescriptionEntry{{DisplayName: "Ropinirole", Dose: math.Inf(1), Freq: 1}}, "finite"},
		{"huge dose", []ledd.PrescriptionEntry{{DisplayName: "Ropinirole", Dose: MaxDose + 1, Freq: 1}}, "too large"},
		{"frequency too high", []ledd.PrescriptionEntry{{DisplayName: "Ropinirole", Dose: 1, Freq: 25}}, "frequency"},
		{"bad time", []ledd.PrescriptionEntry{{DisplayName: "Ropinirole", Dose: 1, Freq: 1, Times: []string{"7am"}}}, "HH:MM"},
		{"dangerous name", []ledd.PrescriptionEntry{{DisplayName: "drop table drugs", Dose: 1, Freq: 1}}, "display name"},
		{"bad drug id", []ledd.PrescriptionEntry{{DrugID: "a b", DisplayName: "Ropinirole", Dose: 1, Freq: 1}}, "invalid drug id"},
		{"too many rows", make([]ledd.PrescriptionEntry, MaxPrescriptionRows+1), "too many prescription rows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePrescriptions(tt.rows)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePrescriptionsReportsRowNumber(t *testing.T) {
	v := NewRequestValidator()
	rows := []ledd.PrescriptionEntry{{}, {DisplayName: "Ropinirole", Dose: 1, Freq: MaxFreq + 1}}

	err := v.ValidatePrescriptions(rows)
	if err == nil || !strings.HasPrefix(err.Error(), "prescription 2:") {
		t.Errorf("expected error for row 2, got %v", err)
	}
}

func TestValidateTimeline(t *testing.T) {
	v := NewRequestValidator()
	full := make([]bool, 24)

	if err := v.ValidateTimeline(nil, nil); err != nil {
		t.Errorf("empty timeline rejected: %v", err)
	}
	if err := v.ValidateTimeline(full, full); err != nil {
		t.Errorf("full timeline rejected: %v", err)
	}
	if err := v.ValidateTimeline(full, nil); err != nil {
		t.Errorf("partial timeline rejected: %v", err)
	}
	if err := v.ValidateTimeline(make([]bool, 23), nil); err == nil || !strings.Contains(err.Error(), "off") {
		t.Errorf("expected off length error, got %v", err)
	}
	if err := v.ValidateTimeline(nil, make([]bool, 25)); err == nil || !strings.Contains(err.Error(), "dyskinesia") {
		t.Errorf("expected dyskinesia length error, got %v", err)
	}
}

func TestReportCatalogQuality(t *testing.T) {
	v := NewRequestValidator()

	report := v.ReportCatalogQuality(catalog.Default())
	if !reflect.DeepEqual(report.FixedModeIDs, []string{"ZONISAMIDE", "ISTRADEFYLLINE"}) {
		t.Errorf("FixedModeIDs = %v", report.FixedModeIDs)
	}
	if len(report.MissingBrandIDs) != 0 || len(report.UntitratedAgonistID) != 0 {
		t.Errorf("unexpected issues in the builtin table: %+v", report)
	}

	entries := []catalog.Entry{
		{ID: "A", DisplayName: "Agonist A", Category: catalog.CategoryAgonist, Mode: catalog.ModeDirect, Factor: 1, LongActing: true},
		{ID: "B", DisplayName: "Old drug", Brands: []string{"Oldie"}, Category: catalog.CategoryOther, Mode: catalog.ModeDirect, Factor: 1},
	}
	c, err := catalog.New(entries, "test")
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}

	report = v.ReportCatalogQuality(c)
	if !reflect.DeepEqual(report.MissingBrandIDs, []string{"A"}) {
		t.Errorf("MissingBrandIDs = %v", report.MissingBrandIDs)
	}
	if !reflect.DeepEqual(report.UntitratedAgonistID, []string{"A"}) {
		t.Errorf("UntitratedAgonistID = %v", report.UntitratedAgonistID)
	}
	if !reflect.DeepEqual(report.InactiveIDs, []string{"A", "B"}) {
		t.Errorf("InactiveIDs = %v", report.InactiveIDs)
	}

	if got := v.ReportCatalogQuality(nil); got == nil {
		t.Error("expected an empty report for a nil catalog")
	}
}
