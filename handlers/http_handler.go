package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/dopaplan/dopaplan-api/catalog"
	"github.com/dopaplan/dopaplan-api/interfaces"
	"github.com/dopaplan/dopaplan-api/ledd"
	"github.com/dopaplan/dopaplan-api/logging"
	"github.com/dopaplan/dopaplan-api/metrics"
	"github.com/dopaplan/dopaplan-api/proposals"
	"github.com/dopaplan/dopaplan-api/timeline"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// DefaultMaxBody is used when the handler is built without a body limit
const DefaultMaxBody = 64 * 1024

var errEmptyBody = errors.New("request body is empty")

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	store     interfaces.CatalogStore
	validator interfaces.RequestValidator
	health    interfaces.HealthChecker
	maxBody   int64
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(store interfaces.CatalogStore, validator interfaces.RequestValidator, health interfaces.HealthChecker, maxBody int64) *HTTPHandlerImpl {
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	return &HTTPHandlerImpl{
		store:     store,
		validator: validator,
		health:    health,
		maxBody:   maxBody,
	}
}

// currentCatalog returns the catalog snapshot for one request, answering 503
// itself when none is loaded yet
func (h *HTTPHandlerImpl) currentCatalog(w http.ResponseWriter) (*catalog.Catalog, bool) {
	c := h.store.GetCatalog()
	if c == nil {
		RespondWithError(w, http.StatusServiceUnavailable, "Drug catalog is not loaded yet")
		return nil, false
	}
	return c, true
}

// decodeJSON reads at most maxBody bytes and decodes them into dst,
// rejecting unknown fields. It writes the error response on failure
func (h *HTTPHandlerImpl) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err == nil && len(bytes.TrimSpace(body)) == 0 {
		err = errEmptyBody
	}
	if err == nil {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		err = dec.Decode(dst)
	}
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		logging.Warn("Request body too large", "path", r.URL.Path, "max_allowed", h.maxBody)
		RespondWithError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Request body too large. Maximum allowed size is %d bytes", h.maxBody))
		return false
	}

	logging.Warn("Unusual user input", "path", r.URL.Path, "error", err)
	RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON body: %v", err))
	return false
}

// ServeDrugs returns the active catalog grouped by category in display order
func (h *HTTPHandlerImpl) ServeDrugs(w http.ResponseWriter, r *http.Request) {
	c, ok := h.currentCatalog(w)
	if !ok {
		return
	}

	groups := c.Grouped()
	count := 0
	for _, g := range groups {
		count += len(g.Drugs)
	}

	setLastModified(w, h.store.GetLastUpdated())
	RespondWithJSON(w, http.StatusOK, DrugsResponse{
		Source: c.Source(),
		Count:  count,
		Groups: groups,
	})
}

// FindDrugByID returns one reference entry, active or not
func (h *HTTPHandlerImpl) FindDrugByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.validator.ValidateDrugID(id); err != nil {
		logging.Warn("Unusual user input", "id", id)
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, ok := h.currentCatalog(w)
	if !ok {
		return
	}

	entry, exists := c.ByID(id)
	if !exists {
		RespondWithError(w, http.StatusNotFound, "Drug not found")
		return
	}

	setLastModified(w, h.store.GetLastUpdated())
	RespondWithJSON(w, http.StatusOK, entry)
}

// ComputeLEDD returns per-row equivalences and the summary for a regimen
func (h *HTTPHandlerImpl) ComputeLEDD(w http.ResponseWriter, r *http.Request) {
	var req LEDDRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidatePrescriptions(req.Prescriptions); err != nil {
		logging.Warn("Invalid prescriptions", "error", err)
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, ok := h.currentCatalog(w)
	if !ok {
		return
	}

	entries, summary := ledd.ComputeAll(c, req.Prescriptions)

	metrics.CalculationsTotal.WithLabelValues("ledd").Inc()
	metrics.LEDDTotal.Observe(summary.Total)

	RespondWithJSON(w, http.StatusOK, LEDDResponse{
		Entries: entries,
		Summary: summary,
	})
}

// EncodeTimeline turns hourly symptom flags into time ranges
func (h *HTTPHandlerImpl) EncodeTimeline(w http.ResponseWriter, r *http.Request) {
	var req TimelineRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateTimeline(req.Off, req.Dyskinesia); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	off := timeline.EncodeRanges(timeline.FromBools(req.Off))
	dyskinesia := timeline.EncodeRanges(timeline.FromBools(req.Dyskinesia))

	metrics.CalculationsTotal.WithLabelValues("timeline").Inc()

	RespondWithJSON(w, http.StatusOK, TimelineResponse{
		Off:            nonNil(off),
		Dyskinesia:     nonNil(dyskinesia),
		OffText:        timeline.FormatRanges(off),
		DyskinesiaText: timeline.FormatRanges(dyskinesia),
	})
}

// GenerateProposals runs the calculator, the timeline encoder and the rule
// engine over one request and returns the six proposals with their context
func (h *HTTPHandlerImpl) GenerateProposals(w http.ResponseWriter, r *http.Request) {
	var req ProposalsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidatePrescriptions(req.Prescriptions); err != nil {
		logging.Warn("Invalid prescriptions", "error", err)
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validator.ValidateTimeline(req.Timeline.Off, req.Timeline.Dyskinesia); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, ok := h.currentCatalog(w)
	if !ok {
		return
	}

	entries, summary := ledd.ComputeAll(c, req.Prescriptions)
	tl := timeline.Timeline{
		Off:        timeline.FromBools(req.Timeline.Off),
		Dyskinesia: timeline.FromBools(req.Timeline.Dyskinesia),
	}
	items := proposals.NewEngine(c).Generate(summary, tl, req.Companion, entries)

	names := make([]string, 0, len(req.Prescriptions))
	for _, row := range req.Prescriptions {
		if row.Filled() {
			names = append(names, row.DisplayName)
		}
	}
	bodies := make([]string, len(items))
	for i, item := range items {
		bodies[i] = item.Body
		metrics.ProposalBranchTotal.WithLabelValues(item.Title, item.Branch).Inc()
	}
	warning, _ := proposals.SleepinessWarning(req.Companion)

	resp := ProposalsResponse{
		CalculationID:     uuid.NewString(),
		Entries:           entries,
		Summary:           summary,
		OffRanges:         tl.OffRanges(),
		DyskinesiaRanges:  tl.DyskinesiaRanges(),
		Proposals:         items,
		SleepinessWarning: warning,
		PrescribedBrands:  nonNil(c.BrandsFor(names)),
		MentionedBrands:   nonNil(c.MentionedBrands(bodies...)),
	}

	metrics.CalculationsTotal.WithLabelValues("proposals").Inc()
	metrics.LEDDTotal.Observe(summary.Total)
	logging.Debug("Proposals generated",
		"calculation_id", resp.CalculationID,
		"ledd_total", summary.Total,
		"rows", len(req.Prescriptions),
	)

	RespondWithJSON(w, http.StatusOK, resp)
}

// HealthCheck returns service health with catalog and runtime details
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.health.HealthCheck()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var uptime time.Duration
	if start := h.store.GetServerStartTime(); !start.IsZero() {
		uptime = time.Since(start)
	}

	RespondWithJSON(w, httpStatus, HealthResponse{
		Status:        status,
		UptimeSeconds: uptime.Seconds(),
		Uptime:        formatUptimeHuman(uptime),
		Data:          data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	})
}
