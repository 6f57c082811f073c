package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dopaplan/dopaplan-api/catalog"
	"github.com/dopaplan/dopaplan-api/config"
	"github.com/dopaplan/dopaplan-api/data"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func testConfig(env config.Environment) *config.Config {
	return &config.Config{
		Port:            "0",
		Address:         "localhost",
		Env:             env,
		LogLevel:        "error",
		MaxRequestBody:  65536,
		MaxHeaderSize:   1048576,
		CatalogReloadAt: "06:00;18:00",
		AllowedOrigins:  []string{"*"},
	}
}

func newTestServer(t *testing.T, env config.Environment) *Server {
	t.Helper()

	store := data.NewCatalogContainer()
	store.SetServerStartTime(time.Now())
	store.UpdateCatalog(catalog.Default(), nil)

	s := NewServer(testConfig(env), store)
	t.Cleanup(s.rateLimiter.Stop)
	return s
}

func TestSetupMiddleware(t *testing.T) {
	s := newTestServer(t, config.EnvTest)

	s.router.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		if middleware.GetReqID(r.Context()) == "" {
			t.Error("RequestID should be available in request context")
		}
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Limit") != "1000" {
		t.Errorf("Expected rate limit headers, got %q", rr.Header().Get("X-RateLimit-Limit"))
	}
}

func TestSetupRoutes(t *testing.T) {
	s := newTestServer(t, config.EnvTest)

	tests := []struct {
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/v1/drugs", "", http.StatusOK},
		{http.MethodGet, "/v1/drugs/LDOPA_IR", "", http.StatusOK},
		{http.MethodGet, "/v1/drugs/NOPE", "", http.StatusNotFound},
		{http.MethodPost, "/v1/ledd", `{"prescriptions":[]}`, http.StatusOK},
		{http.MethodPost, "/v1/timeline", `{}`, http.StatusOK},
		{http.MethodPost, "/v1/proposals", `{}`, http.StatusOK},
		{http.MethodGet, "/v1/ledd", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/v2/drugs", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			s.Handler().ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}

	// chi should know every API route
	router := s.router.(*chi.Mux)
	for _, route := range []string{"/v1/drugs", "/v1/drugs/{id}", "/v1/ledd", "/v1/timeline", "/v1/proposals", "/health", "/metrics"} {
		found := false
		_ = chi.Walk(router, func(method, pattern string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			if pattern == route {
				found = true
			}
			return nil
		})
		if !found {
			t.Errorf("Route %s is not registered", route)
		}
	}
}

func TestMetricsEndpointExposesRequests(t *testing.T) {
	s := newTestServer(t, config.EnvTest)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/drugs", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()

	if !strings.Contains(body, `path="/v1/drugs"`) {
		t.Error("Expected /v1/drugs to be recorded by route pattern")
	}
	if !strings.Contains(body, "rate_limiter_buckets_total") {
		t.Error("Expected the rate limiter gauge to be exported")
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, config.EnvTest)

	req := httptest.NewRequest(http.MethodOptions, "/v1/proposals", nil)
	req.Header.Set("Origin", "https://clinic.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code >= 300 {
		t.Errorf("Expected a successful preflight, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestProductionBlocksDirectAccess(t *testing.T) {
	s := newTestServer(t, config.EnvProduction)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "203.0.113.9:4444"
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for direct access, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "203.0.113.9:4444"
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 through the proxy, got %d", rr.Code)
	}
}

func TestServerLifecycle(t *testing.T) {
	s := newTestServer(t, config.EnvTest)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Start()
	}()

	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Server shutdown should not error: %v", err)
	}

	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("Expected http.ErrServerClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Server should have shut down within 2 seconds")
	}
}
