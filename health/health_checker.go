// Package health provides health checking for the LEDD API
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/dopaplan/dopaplan-api/catalog"
	"github.com/dopaplan/dopaplan-api/interfaces"
	"github.com/dopaplan/dopaplan-api/scheduler"
)

// Age thresholds for catalogs loaded from a file. The built-in table never goes stale
const (
	degradedAfter  = 25 * time.Hour
	unhealthyAfter = 72 * time.Hour
)

// Compile-time check to ensure HealthCheckerImpl implements HealthChecker
var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store    interfaces.CatalogStore
	reloadAt string
	now      func() time.Time
}

// NewHealthChecker creates a new health checker. reloadAt is the catalog
// reload schedule used to report the next update
func NewHealthChecker(store interfaces.CatalogStore, reloadAt string) *HealthCheckerImpl {
	return &HealthCheckerImpl{
		store:    store,
		reloadAt: reloadAt,
		now:      time.Now,
	}
}

// HealthCheck returns the status, catalog details and the HTTP code for /health
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	c := h.store.GetCatalog()
	lastUpdate := h.store.GetLastUpdated()
	isUpdating := h.store.IsUpdating()
	report := h.store.GetQualityReport()

	dataAge := h.now().Sub(lastUpdate)

	var entries, active int
	source := ""
	if c != nil {
		entries = c.Len()
		active = len(c.Active())
		source = c.Source()
	}
	fromFile := source != "" && source != catalog.BuiltinSource

	switch {
	case entries == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case fromFile && dataAge > unhealthyAfter:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	// Reloads keep failing but the previous table still answers correctly
	case fromFile && dataAge > degradedAfter:
		status = "degraded"
		httpStatus = http.StatusOK

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"catalog_source":     source,
		"catalog_entries":    entries,
		"active_entries":     active,
		"fixed_mode_entries": len(report.FixedModeIDs),
		"last_update":        lastUpdate.Format(time.RFC3339),
		"data_age_hours":     math.Round(dataAge.Hours()*10) / 10,
		"is_updating":        isUpdating,
		"next_update":        h.CalculateNextUpdate().Format(time.RFC3339),
	}

	return status, data, httpStatus
}

// CalculateNextUpdate returns the next scheduled catalog reload
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	return scheduler.NextReload(h.reloadAt, h.now())
}
