package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dopaplan/dopaplan-api/catalog"
	"github.com/dopaplan/dopaplan-api/data"
	"github.com/dopaplan/dopaplan-api/handlers"
	"github.com/dopaplan/dopaplan-api/health"
	"github.com/dopaplan/dopaplan-api/validation"
	"github.com/go-chi/chi/v5"
)

const benchmarkProposalsBody = `{
	"prescriptions":[
		{"displayName":"Levodopa/Carbidopa","dose":100,"freq":4},
		{"displayName":"Entacapone","dose":100,"freq":4},
		{"displayName":"Ropinirole","dose":4,"freq":2},
		{"displayName":"Rasagiline","dose":1,"freq":1}
	],
	"timeline":{
		"off":[false,false,false,false,false,false,true,true,false,false,false,false,false,false,false,true,true,false,false,false,false,false,false,false],
		"dyskinesia":[false,false,false,false,false,false,false,false,false,false,false,true,true,false,false,false,false,false,false,false,false,false,false,false]
	},
	"companion":{"sleepiness":true,"tremor":true}
}`

// benchmarkRouter mounts the handlers without the rate limiter so runs are
// not throttled
func benchmarkRouter() http.Handler {
	store := data.NewCatalogContainer()
	store.SetServerStartTime(time.Now())
	store.UpdateCatalog(catalog.Default(), nil)

	h := handlers.NewHTTPHandler(store, validation.NewRequestValidator(), health.NewHealthChecker(store, ""), 0)

	router := chi.NewRouter()
	router.Get("/health", h.HealthCheck)
	router.Get("/v1/drugs", h.ServeDrugs)
	router.Get("/v1/drugs/{id}", h.FindDrugByID)
	router.Post("/v1/ledd", h.ComputeLEDD)
	router.Post("/v1/proposals", h.GenerateProposals)
	return router
}

func BenchmarkDrugs(b *testing.B) {
	router := benchmarkRouter()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("GET", "/v1/drugs", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

func BenchmarkDrugByID(b *testing.B) {
	router := benchmarkRouter()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("GET", "/v1/drugs/ROPINIROLE", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

func BenchmarkProposals(b *testing.B) {
	router := benchmarkRouter()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("POST", "/v1/proposals", strings.NewReader(benchmarkProposalsBody))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			b.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
		}
	}
}

func BenchmarkHealth(b *testing.B) {
	router := benchmarkRouter()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

// Concurrent readers against one catalog snapshot
func BenchmarkConcurrentProposals(b *testing.B) {
	router := benchmarkRouter()

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req := httptest.NewRequest("POST", "/v1/proposals", strings.NewReader(benchmarkProposalsBody))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
		}
	})
}
