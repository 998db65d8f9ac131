package endpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/localdiscovery/component"
	"github.com/kbukum/localdiscovery/discovery"
	"github.com/kbukum/localdiscovery/discovery/hostinfo"
	"github.com/kbukum/localdiscovery/discovery/local"
	"github.com/kbukum/localdiscovery/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(client ClientFunc) *gin.Engine {
	r := gin.New()
	r.GET("/discovery/services", Services(client))
	r.GET("/discovery/services/:name", Instances(client))
	return r
}

func localClient(t *testing.T) discovery.DiscoveryClient {
	t.Helper()
	d := local.New(logger.NewNop(), local.WithResolver(hostinfo.ResolverFunc(func(context.Context) (string, error) {
		return "box-1", nil
	})))
	port := 8080
	d.Initialize(context.Background(), local.Params{AppName: "orders", ConfiguredPort: &port})
	return d.AsDiscoveryClient()
}

func get(t *testing.T, r http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON from %s: %v", path, err)
	}
	return rr, body
}

func TestServicesEndpoint(t *testing.T) {
	c := localClient(t)
	rr, body := get(t, newRouter(func() discovery.DiscoveryClient { return c }), "/discovery/services")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	svcs, _ := body["services"].([]any)
	if len(svcs) != 1 || svcs[0] != "orders" {
		t.Errorf("unexpected services %v", body["services"])
	}
}

func TestInstancesEndpoint(t *testing.T) {
	c := localClient(t)
	r := newRouter(func() discovery.DiscoveryClient { return c })

	tests := []struct {
		name       string
		path       string
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:       "self",
			path:       "/discovery/services/orders",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				list, _ := body["instances"].([]any)
				if len(list) != 1 {
					t.Fatalf("expected one instance, got %v", body["instances"])
				}
				inst := list[0].(map[string]any)
				if inst["host"] != "box-1" || inst["port"] != float64(8080) || inst["service_id"] != "orders" {
					t.Errorf("unexpected instance %v", inst)
				}
			},
		},
		{
			name:       "other service is empty",
			path:       "/discovery/services/billing",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				list, ok := body["instances"].([]any)
				if !ok || len(list) != 0 {
					t.Errorf("expected empty list, got %v", body["instances"])
				}
			},
		},
		{
			name:       "one",
			path:       "/discovery/services/orders?one=true",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				inst, _ := body["instance"].(map[string]any)
				if inst["id"] != "orders:box-1:8080" {
					t.Errorf("unexpected instance %v", body["instance"])
				}
			},
		},
		{
			name:       "one for unknown service",
			path:       "/discovery/services/billing?one=true",
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]any) {
				errBody, _ := body["error"].(map[string]any)
				if errBody["code"] != "NOT_FOUND" {
					t.Errorf("unexpected error body %v", body)
				}
			},
		},
		{
			name:       "unknown strategy",
			path:       "/discovery/services/orders?one=true&strategy=fastest",
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				errBody, _ := body["error"].(map[string]any)
				if errBody["code"] != "INVALID_INPUT" {
					t.Errorf("unexpected error body %v", body)
				}
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr, body := get(t, r, tc.path)
			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
			tc.check(t, body)
		})
	}
}

func TestErrorEchoesRequestID(t *testing.T) {
	c := localClient(t)
	r := newRouter(func() discovery.DiscoveryClient { return c })

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/discovery/services/billing?one=true", http.NoBody)
	req.Header.Set("X-Request-Id", "req-9")
	r.ServeHTTP(rr, req)

	var body struct {
		Error struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if rr.Code != http.StatusNotFound || body.Error.RequestID != "req-9" {
		t.Errorf("unexpected error response %d %+v", rr.Code, body)
	}
}

func TestEndpointsWithoutClient(t *testing.T) {
	r := newRouter(func() discovery.DiscoveryClient { return nil })
	for _, path := range []string{"/discovery/services", "/discovery/services/orders"} {
		rr, _ := get(t, r, path)
		if rr.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", path, rr.Code)
		}
	}
}

func TestInfoEndpoint(t *testing.T) {
	r := gin.New()
	r.GET("/info", Info("orders"))
	rr, body := get(t, r, "/info")
	if rr.Code != http.StatusOK || body["service"] != "orders" {
		t.Errorf("unexpected info response %d %v", rr.Code, body)
	}
	build, _ := body["build"].(map[string]any)
	if build["version"] == "" || build["version"] == nil {
		t.Errorf("expected build version, got %v", body["build"])
	}
}

func TestHealthReportsDiscoveryMode(t *testing.T) {
	tests := []struct {
		name       string
		components []component.Health
		wantCode   int
		wantStatus string
		wantMode   string
	}{
		{
			name:       "local fallback",
			components: []component.Health{{Name: DiscoveryComponent, Status: component.StatusHealthy, Message: "local (fallback)"}},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
			wantMode:   "local (fallback)",
		},
		{
			name: "consul degraded",
			components: []component.Health{
				{Name: "server", Status: component.StatusHealthy},
				{Name: DiscoveryComponent, Status: component.StatusDegraded, Message: "consul"},
			},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
			wantMode:   "consul",
		},
		{
			name:       "discovery not started",
			components: []component.Health{{Name: DiscoveryComponent, Status: component.StatusUnhealthy, Message: "discovery not initialized"}},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
			wantMode:   "unavailable",
		},
		{
			name:       "no discovery component",
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
			wantMode:   "none",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", Health("orders", func(context.Context) []component.Health { return tt.components }))

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

			var body HealthResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if rr.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			if body.Status != tt.wantStatus || body.Discovery != tt.wantMode || body.Service != "orders" {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}

func TestReadinessFollowsDiscovery(t *testing.T) {
	healthy := false
	r := gin.New()
	r.GET("/ready", Readiness("orders", func(context.Context) []component.Health {
		if !healthy {
			return []component.Health{{Name: DiscoveryComponent, Status: component.StatusUnhealthy}}
		}
		return []component.Health{{Name: DiscoveryComponent, Status: component.StatusHealthy, Message: "local (fallback)"}}
	}))

	rr, body := get(t, r, "/ready")
	if rr.Code != http.StatusServiceUnavailable || body["status"] != "not_ready" {
		t.Errorf("expected not_ready before discovery starts, got %d %v", rr.Code, body)
	}

	healthy = true
	rr, body = get(t, r, "/ready")
	if rr.Code != http.StatusOK || body["status"] != "ready" || body["discovery"] != "local (fallback)" {
		t.Errorf("expected ready via local fallback, got %d %v", rr.Code, body)
	}
}

func TestLiveness(t *testing.T) {
	r := gin.New()
	r.GET("/alive", Liveness("orders"))
	rr, body := get(t, r, "/alive")
	if rr.Code != http.StatusOK || body["status"] != "alive" || body["service"] != "orders" {
		t.Errorf("unexpected liveness response %d %v", rr.Code, body)
	}
}
