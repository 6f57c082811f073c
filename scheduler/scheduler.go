// Package scheduler keeps the drug reference table fresh. It loads the
// catalog at startup, reloads it at fixed times of day with gocron and warns
// when the table in use has gone stale
package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dopaplan/dopaplan-api/interfaces"
	"github.com/dopaplan/dopaplan-api/logging"
	"github.com/dopaplan/dopaplan-api/metrics"
	"github.com/dopaplan/dopaplan-api/validation"
	"github.com/go-co-op/gocron"
)

// DefaultReloadAt is the gocron At() expression used when none is configured
const DefaultReloadAt = "06:00;18:00"

// staleAfter is how old the catalog may get before the monitor warns
const staleAfter = 25 * time.Hour

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler reloads the catalog into the store on a daily schedule
type Scheduler struct {
	store     interfaces.CatalogStore
	loader    interfaces.CatalogLoader
	validator interfaces.RequestValidator
	reloadAt  string
	scheduler *gocron.Scheduler
	job       *gocron.Job

	monitorInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

// NewScheduler creates a scheduler with injected dependencies. reloadAt uses
// gocron's "HH:MM;HH:MM" syntax; an empty value means DefaultReloadAt
func NewScheduler(store interfaces.CatalogStore, loader interfaces.CatalogLoader, reloadAt string) *Scheduler {
	if reloadAt == "" {
		reloadAt = DefaultReloadAt
	}
	return &Scheduler{
		store:           store,
		loader:          loader,
		validator:       validation.NewRequestValidator(),
		reloadAt:        reloadAt,
		scheduler:       gocron.NewScheduler(time.Local),
		monitorInterval: time.Hour,
		stop:            make(chan struct{}),
	}
}

// Start performs the initial load, then schedules reloads and health monitoring
func (s *Scheduler) Start() error {
	if err := s.updateCatalog(); err != nil {
		logging.Error("Failed to perform initial catalog load", "error", err)
		return fmt.Errorf("initial catalog load failed: %w", err)
	}

	job, err := s.scheduler.Every(1).Days().At(s.reloadAt).Do(func() {
		if err := s.updateCatalog(); err != nil {
			logging.Error("Failed to reload catalog, keeping the previous one", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule catalog reloads", "error", err)
		return fmt.Errorf("failed to schedule catalog reloads: %w", err)
	}
	s.job = job

	s.scheduler.StartAsync()
	s.startHealthMonitoring()

	return nil
}

// Stop stops the reload job and the health monitor
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.stopOnce.Do(func() { close(s.stop) })
}

// NextRun returns when the reload job fires next
func (s *Scheduler) NextRun() time.Time {
	if s.job != nil {
		if next := s.job.NextRun(); !next.IsZero() {
			return next
		}
	}
	return NextReload(s.reloadAt, time.Now())
}

// updateCatalog loads a fresh catalog and swaps it into the store
func (s *Scheduler) updateCatalog() error {
	// Prevent concurrent updates
	if !s.store.BeginUpdate() {
		logging.Info("Catalog reload already in progress, skipping...")
		return nil
	}
	defer s.store.EndUpdate()

	start := time.Now()

	c, err := s.loader.Load()
	if err != nil {
		metrics.CatalogReloadsTotal.WithLabelValues("failure").Inc()
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if c == nil || c.Len() == 0 {
		metrics.CatalogReloadsTotal.WithLabelValues("failure").Inc()
		return fmt.Errorf("loaded catalog is empty")
	}

	report := s.validator.ReportCatalogQuality(c)
	logQualityReport(report)

	s.store.UpdateCatalog(c, report)
	metrics.CatalogReloadsTotal.WithLabelValues("success").Inc()
	metrics.RecordCatalog(c.Len(), len(c.Active()))

	logging.Info("Catalog load completed",
		"duration", time.Since(start).String(),
		"source", c.Source(),
		"entry_count", c.Len(),
	)

	return nil
}

func logQualityReport(report *interfaces.CatalogQualityReport) {
	// FIXED entries silently contribute zero to every total
	if len(report.FixedModeIDs) > 0 {
		logging.Warn("Catalog entries with FIXED mode contribute no equivalence",
			"count", len(report.FixedModeIDs),
			"ids", report.FixedModeIDs,
		)
	}

	if len(report.MissingBrandIDs) > 0 {
		logging.Warn("Catalog entries without brands",
			"count", len(report.MissingBrandIDs),
			"ids", report.MissingBrandIDs,
		)
	}

	if len(report.UntitratedAgonistID) > 0 {
		logging.Warn("Long-acting agonists without a titration ladder",
			"count", len(report.UntitratedAgonistID),
			"ids", report.UntitratedAgonistID,
		)
	}

	if len(report.InactiveIDs) > 0 {
		logging.Debug("Inactive catalog entries", "ids", report.InactiveIDs)
	}
}

// startHealthMonitoring warns when the catalog has not been refreshed recently
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(s.monitorInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				lastUpdate := s.store.GetLastUpdated()
				if time.Since(lastUpdate) > staleAfter {
					logging.Warn("Catalog hasn't been reloaded in over 25 hours", "last_update", lastUpdate)
				}
			}
		}
	}()
}

// NextReload returns the first reload time strictly after now for a
// "HH:MM;HH:MM" expression. Unparseable parts are ignored; when nothing
// parses the default schedule is used
func NextReload(reloadAt string, now time.Time) time.Time {
	minutes := parseReloadTimes(reloadAt)
	if len(minutes) == 0 {
		minutes = parseReloadTimes(DefaultReloadAt)
	}

	at := func(day time.Time, m int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, now.Location())
	}

	for _, m := range minutes {
		if candidate := at(now, m); candidate.After(now) {
			return candidate
		}
	}
	return at(now.AddDate(0, 0, 1), minutes[0])
}

// parseReloadTimes returns minutes after midnight, ascending
func parseReloadTimes(reloadAt string) []int {
	var minutes []int
	for _, part := range strings.Split(reloadAt, ";") {
		t, err := time.Parse("15:04", strings.TrimSpace(part))
		if err != nil {
			continue
		}
		minutes = append(minutes, t.Hour()*60+t.Minute())
	}
	sort.Ints(minutes)
	return minutes
}
