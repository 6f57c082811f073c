package interfaces

import (
	"errors"
	"testing"
	"time"

	"github.com/dopaplan/dopaplan-api/catalog"
)

// MockCatalogStore implements CatalogStore for testing
type MockCatalogStore struct {
	catalog     *catalog.Catalog
	report      *CatalogQualityReport
	lastUpdated time.Time
	startTime   time.Time
	updating    bool
}

func (m *MockCatalogStore) GetCatalog() *catalog.Catalog            { return m.catalog }
func (m *MockCatalogStore) GetQualityReport() *CatalogQualityReport { return m.report }
func (m *MockCatalogStore) GetLastUpdated() time.Time               { return m.lastUpdated }
func (m *MockCatalogStore) GetServerStartTime() time.Time           { return m.startTime }
func (m *MockCatalogStore) IsUpdating() bool                        { return m.updating }

func (m *MockCatalogStore) UpdateCatalog(c *catalog.Catalog, report *CatalogQualityReport) {
	m.catalog = c
	m.report = report
	m.lastUpdated = time.Now()
}

func (m *MockCatalogStore) BeginUpdate() bool {
	if m.updating {
		return false
	}
	m.updating = true
	return true
}

func (m *MockCatalogStore) EndUpdate() {
	m.updating = false
}

// MockCatalogLoader implements CatalogLoader for testing
type MockCatalogLoader struct {
	catalog *catalog.Catalog
	err     error
	calls   int
}

func (m *MockCatalogLoader) Load() (*catalog.Catalog, error) {
	m.calls++
	return m.catalog, m.err
}

var (
	_ CatalogStore  = (*MockCatalogStore)(nil)
	_ CatalogLoader = (*MockCatalogLoader)(nil)
)

// refresh mirrors what a scheduler does with the two contracts
func refresh(store CatalogStore, loader CatalogLoader) error {
	if !store.BeginUpdate() {
		return nil
	}
	defer store.EndUpdate()

	c, err := loader.Load()
	if err != nil {
		return err
	}
	store.UpdateCatalog(c, &CatalogQualityReport{})
	return nil
}

func TestCatalogStoreWithLoader(t *testing.T) {
	store := &MockCatalogStore{}
	loader := &MockCatalogLoader{catalog: catalog.Default()}

	if err := refresh(store, loader); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if store.GetCatalog() == nil || store.GetCatalog().Len() == 0 {
		t.Error("Expected the loaded catalog to be stored")
	}
	if store.GetQualityReport() == nil {
		t.Error("Expected a quality report to be stored")
	}
	if store.GetLastUpdated().IsZero() {
		t.Error("Expected last updated to be set")
	}
	if store.IsUpdating() {
		t.Error("Expected update flag to be released")
	}
}

func TestCatalogStoreKeepsCatalogOnLoaderError(t *testing.T) {
	previous := catalog.Default()
	store := &MockCatalogStore{catalog: previous}
	loader := &MockCatalogLoader{err: errors.New("file vanished")}

	if err := refresh(store, loader); err == nil {
		t.Fatal("Expected loader error to propagate")
	}
	if store.GetCatalog() != previous {
		t.Error("Expected the previous catalog to stay in place")
	}
}

func TestCatalogStoreSkipsConcurrentUpdate(t *testing.T) {
	store := &MockCatalogStore{updating: true}
	loader := &MockCatalogLoader{catalog: catalog.Default()}

	if err := refresh(store, loader); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if loader.calls != 0 {
		t.Errorf("Expected loader not to be called during an update, got %d calls", loader.calls)
	}
}
