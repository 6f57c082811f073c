// Package handlers provides the HTTP handlers of the LEDD API: drug catalog
// lookups, LEDD calculation, timeline encoding, proposal generation and
// health reporting. Bodies are JSON in and out
package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dopaplan/dopaplan-api/catalog"
	"github.com/dopaplan/dopaplan-api/ledd"
	"github.com/dopaplan/dopaplan-api/logging"
	"github.com/dopaplan/dopaplan-api/proposals"
	"github.com/goccy/go-json"
)

// DrugsResponse is the body of GET /v1/drugs
type DrugsResponse struct {
	Source string          `json:"source"`
	Count  int             `json:"count"`
	Groups []catalog.Group `json:"groups"`
}

// LEDDRequest is the body of POST /v1/ledd
type LEDDRequest struct {
	Prescriptions []ledd.PrescriptionEntry `json:"prescriptions"`
}

// LEDDResponse is the result of POST /v1/ledd
type LEDDResponse struct {
	Entries []ledd.EntryWithEquivalence `json:"entries"`
	Summary ledd.Summary                `json:"summary"`
}

// TimelineRequest carries one flag per hour of the day; empty means no symptoms
type TimelineRequest struct {
	Off        []bool `json:"off"`
	Dyskinesia []bool `json:"dyskinesia"`
}

// TimelineResponse is the result of POST /v1/timeline
type TimelineResponse struct {
	Off            []string `json:"off"`
	Dyskinesia     []string `json:"dyskinesia"`
	OffText        string   `json:"off_text"`
	DyskinesiaText string   `json:"dyskinesia_text"`
}

// ProposalsRequest is the body of POST /v1/proposals
type ProposalsRequest struct {
	Prescriptions []ledd.PrescriptionEntry    `json:"prescriptions"`
	Timeline      TimelineRequest             `json:"timeline"`
	Companion     proposals.CompanionSymptoms `json:"companion"`
}

// ProposalsResponse is the result of POST /v1/proposals
type ProposalsResponse struct {
	CalculationID     string                      `json:"calculation_id"`
	Entries           []ledd.EntryWithEquivalence `json:"entries"`
	Summary           ledd.Summary                `json:"summary"`
	OffRanges         string                      `json:"off_ranges"`
	DyskinesiaRanges  string                      `json:"dyskinesia_ranges"`
	Proposals         []proposals.Item            `json:"proposals"`
	SleepinessWarning string                      `json:"sleepiness_warning,omitempty"`
	PrescribedBrands  []string                    `json:"prescribed_brands"`
	MentionedBrands   []string                    `json:"mentioned_brands"`
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Uptime        string         `json:"uptime"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	RespondWithJSON(w, code, errorResponse)
}

// setLastModified advertises when the catalog behind a response was loaded
func setLastModified(w http.ResponseWriter, t time.Time) {
	if !t.IsZero() {
		w.Header().Set("Last-Modified", t.UTC().Format(http.TimeFormat))
	}
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// nonNil keeps empty lists as [] rather than null in responses
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
