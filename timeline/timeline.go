// Package timeline models the hourly OFF / dyskinesia symptom bars and
// encodes them into readable time ranges
package timeline

import (
	"fmt"
	"strings"
)

const (
	SlotsPerDay    = 24
	MinutesPerSlot = 60

	// RangeSeparator joins the start and end of one range
	RangeSeparator = "～"
	// ListSeparator joins ranges in FormatRanges
	ListSeparator = ", "
	// None is what FormatRanges returns when no slot is set
	None = "none"
)

// Slots is one day of hourly flags; slot i covers [i:00, i+1:00)
type Slots [SlotsPerDay]bool

// Timeline holds the two independent symptom bars
type Timeline struct {
	Off        Slots `json:"off"`
	Dyskinesia Slots `json:"dyskinesia"`
}

// FromBools copies a caller slice into Slots. Values past the 24th are
// ignored and missing ones stay false
func FromBools(values []bool) Slots {
	var s Slots
	copy(s[:], values)
	return s
}

// Any reports whether at least one slot is set
func (s Slots) Any() bool {
	for _, v := range s {
		if v {
			return true
		}
	}
	return false
}

// SlotToTime renders the start of a slot as HH:MM. Slot 24 renders as 24:00
func SlotToTime(slot int) string {
	minutes := slot * MinutesPerSlot
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// EncodeRanges run-length encodes the set slots into maximal, ascending,
// non-overlapping "HH:MM～HH:MM" ranges. It returns nil when nothing is set
func EncodeRanges(slots Slots) []string {
	var ranges []string
	start := -1
	// Index SlotsPerDay is a sentinel that closes a run reaching midnight
	for i := 0; i <= SlotsPerDay; i++ {
		if i < SlotsPerDay && slots[i] {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			ranges = append(ranges, SlotToTime(start)+RangeSeparator+SlotToTime(i))
			start = -1
		}
	}
	return ranges
}

// FormatRanges joins ranges for display, or returns None
func FormatRanges(ranges []string) string {
	if len(ranges) == 0 {
		return None
	}
	return strings.Join(ranges, ListSeparator)
}

// OffRanges returns the formatted OFF periods
func (t Timeline) OffRanges() string {
	return FormatRanges(EncodeRanges(t.Off))
}

// DyskinesiaRanges returns the formatted dyskinesia periods
func (t Timeline) DyskinesiaRanges() string {
	return FormatRanges(EncodeRanges(t.Dyskinesia))
}
