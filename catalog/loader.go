package catalog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Column layout of a catalog TSV file. Columns after ColActive are optional
const (
	ColID = iota
	ColDisplayName
	ColBrands
	ColCategory
	ColUnit
	ColMode
	ColFactor
	ColBaseMultiplier
	ColMaxSingleDose
	ColMaxDailyDose
	ColWarnings
	ColActive
	ColFlags
	ColExampleBrand
	ColTitrationLabel
	ColTitrationMax
	ColTitrationSteps
	ColTitrationSuffix

	requiredColumns = ColActive + 1
)

// Loader loads the reference table from Path, or returns the built-in table
// when Path is empty
type Loader struct {
	Path string
}

// NewLoader returns a Loader for path
func NewLoader(path string) *Loader {
	return &Loader{Path: path}
}

// Load builds a new catalog on every call
func (l *Loader) Load() (*Catalog, error) {
	if l == nil || l.Path == "" {
		return Default(), nil
	}
	return LoadFile(l.Path)
}

// LoadFile reads a catalog TSV file. Files that are not valid UTF-8 are
// decoded as ISO-8859-1, which is what spreadsheet exports commonly produce
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	var reader io.Reader
	if utf8.Valid(raw) {
		reader = bytes.NewReader(raw)
	} else {
		reader = charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(raw))
	}

	c, err := Parse(reader, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return c, nil
}

// Parse reads tab-separated catalog rows. Empty lines and lines starting with
// '#' are ignored, as is a leading header row whose first column is "id".
// Any malformed row fails the whole parse
func Parse(r io.Reader, source string) (*Catalog, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var entries []Entry
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(entries) == 0 && strings.EqualFold(strings.TrimSpace(fields[0]), "id") {
			continue
		}

		e, err := parseRow(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no catalog entries found")
	}

	return New(entries, source)
}

func parseRow(fields []string) (Entry, error) {
	if len(fields) < requiredColumns {
		return Entry{}, fmt.Errorf("expected at least %d columns, got %d", requiredColumns, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	e := Entry{
		ID:          fields[ColID],
		DisplayName: fields[ColDisplayName],
		Brands:      splitBrands(fields[ColBrands]),
		Unit:        fields[ColUnit],
		Warnings:    fields[ColWarnings],
	}

	var err error
	if e.Category, err = ParseCategory(fields[ColCategory]); err != nil {
		return Entry{}, err
	}
	if e.Mode, err = ParseMode(fields[ColMode]); err != nil {
		return Entry{}, err
	}
	if e.Factor, err = parseNumber(fields[ColFactor], "factor"); err != nil {
		return Entry{}, err
	}
	if e.BaseMultiplier, err = parseNumber(fields[ColBaseMultiplier], "base multiplier"); err != nil {
		return Entry{}, err
	}
	if e.MaxSingleDose, err = parseNumber(fields[ColMaxSingleDose], "max single dose"); err != nil {
		return Entry{}, err
	}
	if e.MaxDailyDose, err = parseNumber(fields[ColMaxDailyDose], "max daily dose"); err != nil {
		return Entry{}, err
	}
	if e.Active, err = strconv.ParseBool(strings.ToLower(fields[ColActive])); err != nil {
		return Entry{}, fmt.Errorf("invalid active flag %q", fields[ColActive])
	}

	if len(fields) > ColFlags {
		if err := applyFlags(&e, fields[ColFlags]); err != nil {
			return Entry{}, err
		}
	}
	if len(fields) > ColExampleBrand {
		e.ExampleBrand = fields[ColExampleBrand]
	}
	if len(fields) > ColTitrationSteps && fields[ColTitrationLabel] != "" {
		t, err := parseTitration(fields)
		if err != nil {
			return Entry{}, err
		}
		e.Titration = t
	}

	return e, nil
}

// splitBrands splits the semicolon-delimited brand column, keeping order.
// The Japanese list separator is accepted too
func splitBrands(s string) []string {
	s = strings.ReplaceAll(s, "、", ";")
	var brands []string
	for _, b := range strings.Split(s, ";") {
		if b = strings.TrimSpace(b); b != "" {
			brands = append(brands, b)
		}
	}
	return brands
}

func parseNumber(s, name string) (float64, error) {
	if s == "" || s == "-" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %v", name, v)
	}
	return v, nil
}

func applyFlags(e *Entry, s string) error {
	for _, f := range strings.Split(s, ",") {
		switch strings.ToUpper(strings.TrimSpace(f)) {
		case "":
		case "ER", "EXTENDED_RELEASE":
			e.ExtendedRelease = true
		case "ENTERAL":
			e.Enteral = true
		case "LONG_ACTING":
			e.LongActing = true
		default:
			return fmt.Errorf("unknown formulation flag %q", f)
		}
	}
	return nil
}

// parseTitration reads the titration columns. Steps is either "+N" for a
// fixed increment or a comma-separated ascending ladder
func parseTitration(fields []string) (*Titration, error) {
	t := &Titration{Label: fields[ColTitrationLabel]}

	maxDose, err := parseNumber(fields[ColTitrationMax], "titration max")
	if err != nil {
		return nil, err
	}
	t.Max = maxDose

	steps := fields[ColTitrationSteps]
	if strings.HasPrefix(steps, "+") {
		if t.Step, err = parseNumber(strings.TrimPrefix(steps, "+"), "titration step"); err != nil {
			return nil, err
		}
	} else {
		prev := -1.0
		for _, s := range strings.Split(steps, ",") {
			v, err := parseNumber(strings.TrimSpace(s), "titration rung")
			if err != nil {
				return nil, err
			}
			if v <= prev {
				return nil, fmt.Errorf("titration rungs must ascend, got %v after %v", v, prev)
			}
			t.Rungs = append(t.Rungs, v)
			prev = v
		}
	}

	if len(fields) > ColTitrationSuffix {
		t.Suffix = fields[ColTitrationSuffix]
		if t.Suffix != "" && !strings.HasPrefix(t.Suffix, " ") {
			t.Suffix = " " + t.Suffix
		}
	}
	return t, nil
}
