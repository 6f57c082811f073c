package health

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dopaplan/dopaplan-api/catalog"
	"github.com/dopaplan/dopaplan-api/interfaces"
)

// mockHealthStore for testing
type mockHealthStore struct {
	catalog     *catalog.Catalog
	report      *interfaces.CatalogQualityReport
	lastUpdated time.Time
	isUpdating  bool
}

func (m *mockHealthStore) GetCatalog() *catalog.Catalog { return m.catalog }

func (m *mockHealthStore) GetQualityReport() *interfaces.CatalogQualityReport {
	if m.report == nil {
		return &interfaces.CatalogQualityReport{}
	}
	return m.report
}

func (m *mockHealthStore) GetLastUpdated() time.Time     { return m.lastUpdated }
func (m *mockHealthStore) GetServerStartTime() time.Time { return time.Time{} }
func (m *mockHealthStore) IsUpdating() bool              { return m.isUpdating }
func (m *mockHealthStore) BeginUpdate() bool             { return true }
func (m *mockHealthStore) EndUpdate()                    {}

func (m *mockHealthStore) UpdateCatalog(c *catalog.Catalog, report *interfaces.CatalogQualityReport) {
	// Not used in health tests
}

func fileCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.tsv")
	row := "LD\tLevodopa\tMenesit\tLDOPA\tmg\tDIRECT\t1\t1\t200\t1200\t-\ttrue\n"
	if err := os.WriteFile(path, []byte(row), 0o600); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}
	c, err := catalog.LoadFile(path)
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	return c
}

func TestHealthCheckStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	fromFile := fileCatalog(t)

	tests := []struct {
		name           string
		store          *mockHealthStore
		expectedStatus string
		expectedHTTP   int
	}{
		{
			name:           "no catalog loaded",
			store:          &mockHealthStore{},
			expectedStatus: "unhealthy",
			expectedHTTP:   http.StatusServiceUnavailable,
		},
		{
			name:           "builtin catalog never stale",
			store:          &mockHealthStore{catalog: catalog.Default(), lastUpdated: now.Add(-30 * 24 * time.Hour)},
			expectedStatus: "healthy",
			expectedHTTP:   http.StatusOK,
		},
		{
			name:           "fresh file catalog",
			store:          &mockHealthStore{catalog: fromFile, lastUpdated: now.Add(-time.Hour)},
			expectedStatus: "healthy",
			expectedHTTP:   http.StatusOK,
		},
		{
			name:           "file catalog missed reloads",
			store:          &mockHealthStore{catalog: fromFile, lastUpdated: now.Add(-30 * time.Hour)},
			expectedStatus: "degraded",
			expectedHTTP:   http.StatusOK,
		},
		{
			name:           "file catalog far too old",
			store:          &mockHealthStore{catalog: fromFile, lastUpdated: now.Add(-100 * time.Hour)},
			expectedStatus: "unhealthy",
			expectedHTTP:   http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewHealthChecker(tt.store, "06:00;18:00")
			checker.now = func() time.Time { return now }

			status, _, httpStatus := checker.HealthCheck()
			if status != tt.expectedStatus {
				t.Errorf("status = %q, want %q", status, tt.expectedStatus)
			}
			if httpStatus != tt.expectedHTTP {
				t.Errorf("httpStatus = %d, want %d", httpStatus, tt.expectedHTTP)
			}
		})
	}
}

func TestHealthCheckData(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &mockHealthStore{
		catalog:     catalog.Default(),
		report:      &interfaces.CatalogQualityReport{FixedModeIDs: []string{"ZONISAMIDE", "ISTRADEFYLLINE"}},
		lastUpdated: now.Add(-90 * time.Minute),
		isUpdating:  true,
	}
	checker := NewHealthChecker(store, "06:00;18:00")
	checker.now = func() time.Time { return now }

	_, data, _ := checker.HealthCheck()

	expected := map[string]any{
		"catalog_source":     catalog.BuiltinSource,
		"catalog_entries":    store.catalog.Len(),
		"active_entries":     len(store.catalog.Active()),
		"fixed_mode_entries": 2,
		"data_age_hours":     1.5,
		"is_updating":        true,
		"next_update":        "2026-03-10T18:00:00Z",
	}
	for key, want := range expected {
		if got := data[key]; got != want {
			t.Errorf("data[%q] = %v, want %v", key, got, want)
		}
	}
}

func TestCalculateNextUpdate(t *testing.T) {
	checker := NewHealthChecker(&mockHealthStore{}, "06:00;18:00")
	checker.now = func() time.Time { return time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC) }

	next := checker.CalculateNextUpdate()
	if want := time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC); !next.Equal(want) {
		t.Errorf("CalculateNextUpdate() = %v, want %v", next, want)
	}
}
