// Package data provides thread-safe storage of the drug reference table used
// by the API. The CatalogContainer swaps whole catalogs atomically so a reload
// never exposes a partially built table to readers
package data

import (
	"sync/atomic"
	"time"

	"github.com/dopaplan/dopaplan-api/catalog"
	"github.com/dopaplan/dopaplan-api/interfaces"
	"github.com/dopaplan/dopaplan-api/logging"
)

// Compile-time check to ensure CatalogContainer implements CatalogStore
var _ interfaces.CatalogStore = (*CatalogContainer)(nil)

// CatalogContainer holds the current catalog with atomic values for zero-downtime reloads
type CatalogContainer struct {
	catalog         atomic.Pointer[catalog.Catalog]
	report          atomic.Pointer[interfaces.CatalogQualityReport]
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewCatalogContainer creates an empty container. GetCatalog returns nil
// until the first UpdateCatalog
func NewCatalogContainer() *CatalogContainer {
	cc := &CatalogContainer{}
	cc.lastUpdated.Store(time.Time{})
	cc.serverStartTime.Store(time.Time{})
	return cc
}

// GetCatalog returns the catalog snapshot in use
func (cc *CatalogContainer) GetCatalog() *catalog.Catalog {
	c := cc.catalog.Load()
	if c == nil {
		logging.Warn("Catalog requested before the first load")
	}
	return c
}

// GetQualityReport returns the report computed when the current catalog was loaded
func (cc *CatalogContainer) GetQualityReport() *interfaces.CatalogQualityReport {
	if r := cc.report.Load(); r != nil {
		return r
	}
	return &interfaces.CatalogQualityReport{}
}

// GetLastUpdated returns when the current catalog was stored
func (cc *CatalogContainer) GetLastUpdated() time.Time {
	if v := cc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true while a reload is in progress
func (cc *CatalogContainer) IsUpdating() bool {
	return cc.updating.Load()
}

// SetServerStartTime sets the server start time
func (cc *CatalogContainer) SetServerStartTime(startTime time.Time) {
	cc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (cc *CatalogContainer) GetServerStartTime() time.Time {
	if v := cc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateCatalog atomically replaces the catalog and its quality report.
// A nil catalog is ignored so readers never lose a working table
func (cc *CatalogContainer) UpdateCatalog(c *catalog.Catalog, report *interfaces.CatalogQualityReport) {
	if c == nil {
		logging.Error("Refusing to store a nil catalog")
		return
	}
	if report == nil {
		report = &interfaces.CatalogQualityReport{}
	}

	cc.report.Store(report)
	cc.catalog.Store(c)
	cc.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a reload.
// Returns true if the reload can proceed, false if another one is in progress
func (cc *CatalogContainer) BeginUpdate() bool {
	return cc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a reload
func (cc *CatalogContainer) EndUpdate() {
	cc.updating.Store(false)
}
