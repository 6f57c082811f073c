package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Catalog is an immutable, indexed drug reference table. It is built once
// and shared read-only by the calculator, the proposal engine and handlers
type Catalog struct {
	entries []Entry
	byID    map[string]int
	byName  map[string]int
	source  string
}

// Group is one display section of the catalog
type Group struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Drugs    []Entry  `json:"drugs"`
}

var (
	ErrEmptyID          = errors.New("entry has an empty id")
	ErrEmptyDisplayName = errors.New("entry has an empty display name")
	ErrDuplicateID      = errors.New("duplicate entry id")
	ErrDuplicateName    = errors.New("duplicate display name")
)

// New builds a catalog from entries. source is a free-form description of
// where the entries came from (a file path, "builtin")
func New(entries []Entry, source string) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byID:    make(map[string]int, len(entries)),
		byName:  make(map[string]int, len(entries)),
		source:  source,
	}

	for i, e := range entries {
		if strings.TrimSpace(e.ID) == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrEmptyID)
		}
		if strings.TrimSpace(e.DisplayName) == "" {
			return nil, fmt.Errorf("entry %s: %w", e.ID, ErrEmptyDisplayName)
		}
		if !e.Category.Valid() {
			return nil, fmt.Errorf("entry %s: unknown category %q", e.ID, e.Category)
		}
		if !e.Mode.Valid() {
			return nil, fmt.Errorf("entry %s: unknown LEDD mode %q", e.ID, e.Mode)
		}
		if _, exists := c.byID[e.ID]; exists {
			return nil, fmt.Errorf("entry %s: %w", e.ID, ErrDuplicateID)
		}
		key := NormalizeName(e.DisplayName)
		if _, exists := c.byName[key]; exists {
			return nil, fmt.Errorf("entry %s (%s): %w", e.ID, e.DisplayName, ErrDuplicateName)
		}

		c.byID[e.ID] = len(c.entries)
		c.byName[key] = len(c.entries)
		c.entries = append(c.entries, e.clone())
	}

	return c, nil
}

// NormalizeName is the lookup key for display names: NFKC folded (full-width
// letters and digits become ASCII) and trimmed
func NormalizeName(name string) string {
	return strings.TrimSpace(norm.NFKC.String(name))
}

// Source describes where the catalog was loaded from
func (c *Catalog) Source() string {
	return c.source
}

// Len returns the number of entries, active or not
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Lookup resolves a prescription display name to its entry
func (c *Catalog) Lookup(displayName string) (Entry, bool) {
	if c == nil || displayName == "" {
		return Entry{}, false
	}
	i, ok := c.byName[NormalizeName(displayName)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i].clone(), true
}

// ByID resolves an entry by its identifier
func (c *Catalog) ByID(id string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i].clone(), true
}

// Entries returns a copy of every entry in table order
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.clone()
	}
	return out
}

// Active returns the selectable entries in table order
func (c *Catalog) Active() []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Active {
			out = append(out, e.clone())
		}
	}
	return out
}

// Grouped returns the active entries grouped by category in display order.
// Categories without active entries are omitted
func (c *Catalog) Grouped() []Group {
	active := c.Active()
	groups := make([]Group, 0, len(CategoryOrder))
	for _, cat := range CategoryOrder {
		g := Group{Category: cat, Label: cat.Label()}
		for _, e := range active {
			if e.Category == cat {
				g.Drugs = append(g.Drugs, e)
			}
		}
		if len(g.Drugs) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// BrandsFor returns every brand of the named drugs, de-duplicated and sorted.
// Names missing from the catalog are kept as they are
func (c *Catalog) BrandsFor(displayNames []string) []string {
	set := make(map[string]struct{})
	for _, name := range displayNames {
		if name == "" {
			continue
		}
		e, ok := c.Lookup(name)
		if !ok || len(e.Brands) == 0 {
			set[name] = struct{}{}
			continue
		}
		for _, b := range e.Brands {
			if b = strings.TrimSpace(b); b != "" {
				set[b] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

// MentionedBrands returns the catalog brands that occur in any of texts,
// sorted
func (c *Catalog) MentionedBrands(texts ...string) []string {
	joined := strings.Join(texts, "\n")
	set := make(map[string]struct{})
	for _, e := range c.entries {
		for _, b := range e.Brands {
			if b = strings.TrimSpace(b); b != "" && strings.Contains(joined, b) {
				set[b] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
