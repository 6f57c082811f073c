// Package interfaces defines the contracts between the service packages of
// the LEDD API so that storage, loading, scheduling and validation can be
// swapped out in tests.
package interfaces

import (
	"net/http"
	"time"

	"github.com/dopaplan/dopaplan-api/catalog"
	"github.com/dopaplan/dopaplan-api/ledd"
)

// CatalogQualityReport summarises reference table entries that load fine but
// will not behave as a reader of the table might expect.
type CatalogQualityReport struct {
	FixedModeIDs        []string // FIXED entries contribute no equivalence
	MissingBrandIDs     []string
	InactiveIDs         []string
	UntitratedAgonistID []string // long-acting agonists without a titration ladder
}

// CatalogStore holds the drug reference table currently in use. Readers take
// a snapshot with GetCatalog; a reload swaps the whole table at once.
type CatalogStore interface {
	GetCatalog() *catalog.Catalog
	GetQualityReport() *CatalogQualityReport
	GetLastUpdated() time.Time
	GetServerStartTime() time.Time
	IsUpdating() bool

	UpdateCatalog(c *catalog.Catalog, report *CatalogQualityReport)
	BeginUpdate() bool
	EndUpdate()
}

// CatalogLoader produces a fresh reference table.
type CatalogLoader interface {
	Load() (*catalog.Catalog, error)
}

// Scheduler manages the catalog reload job.
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler lists the API endpoints.
type HTTPHandler interface {
	ServeDrugs(w http.ResponseWriter, r *http.Request)
	FindDrugByID(w http.ResponseWriter, r *http.Request)
	ComputeLEDD(w http.ResponseWriter, r *http.Request)
	EncodeTimeline(w http.ResponseWriter, r *http.Request)
	GenerateProposals(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker reports service health.
type HealthChecker interface {
	// HealthCheck returns the status string, details and the HTTP code to use
	HealthCheck() (status string, data map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled catalog reload
	CalculateNextUpdate() time.Time
}

// RequestValidator checks request payloads before they reach the calculator
// and inspects loaded catalogs.
type RequestValidator interface {
	ValidateInput(input string) error
	ValidateDrugID(id string) error
	ValidatePrescriptions(rows []ledd.PrescriptionEntry) error
	ValidateTimeline(off, dyskinesia []bool) error
	ReportCatalogQuality(c *catalog.Catalog) *CatalogQualityReport
}
