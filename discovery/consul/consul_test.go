package consul

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/consul/api"

	"github.com/kbukum/localdiscovery/discovery"
	"github.com/kbukum/localdiscovery/logger"
)

// fakeAgent serves the subset of the Consul HTTP API the provider uses.
type fakeAgent struct {
	mu         sync.Mutex
	registered map[string]api.AgentServiceRegistration
}

func newFakeAgent(t *testing.T) (*fakeAgent, *httptest.Server) {
	t.Helper()
	a := &fakeAgent{registered: make(map[string]api.AgentServiceRegistration)}
	srv := httptest.NewServer(http.HandlerFunc(a.serve))
	t.Cleanup(srv.Close)
	return a, srv
}

func (a *fakeAgent) serve(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case r.URL.Path == "/v1/agent/service/register":
		var reg api.AgentServiceRegistration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a.registered[reg.ID] = reg
	case strings.HasPrefix(r.URL.Path, "/v1/agent/service/deregister/"):
		delete(a.registered, strings.TrimPrefix(r.URL.Path, "/v1/agent/service/deregister/"))
	case strings.HasPrefix(r.URL.Path, "/v1/health/service/"):
		name := strings.TrimPrefix(r.URL.Path, "/v1/health/service/")
		entries := []*api.ServiceEntry{}
		for _, reg := range a.registered {
			if reg.Name != name {
				continue
			}
			entries = append(entries, &api.ServiceEntry{
				Node: &api.Node{Address: "10.0.0.9"},
				Service: &api.AgentService{
					ID: reg.ID, Service: reg.Name, Address: reg.Address,
					Port: reg.Port, Tags: reg.Tags, Meta: reg.Meta,
				},
				Checks: api.HealthChecks{{Status: api.HealthPassing}},
			})
		}
		w.Header().Set("X-Consul-Index", "7")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	default:
		http.NotFound(w, r)
	}
}

func newTestProvider(t *testing.T, srv *httptest.Server) *Provider {
	t.Helper()
	p, err := NewProvider(discovery.Config{}, Config{Address: strings.TrimPrefix(srv.URL, "http://")}, logger.NewNop())
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	return p
}

func TestProviderRegisterDiscoverDeregister(t *testing.T) {
	agent, srv := newFakeAgent(t)
	p := newTestProvider(t, srv)
	ctx := context.Background()

	err := p.Register(ctx, &discovery.ServiceInfo{
		ID: "orders:box-1:8080", Name: "orders", Address: "box-1", Port: 8080,
		Tags: []string{"http"}, Metadata: map[string]string{"weight": "3"},
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if p.Stats().RegisteredServices != 1 {
		t.Errorf("expected 1 registered service, got %d", p.Stats().RegisteredServices)
	}

	got, err := p.Discover(ctx, "orders")
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(got))
	}
	inst := got[0]
	if inst.Address != "box-1" || inst.Port != 8080 || inst.Protocol != "http" || inst.Weight != 3 {
		t.Errorf("unexpected instance %+v", inst)
	}

	if err := p.Deregister(ctx, "orders:box-1:8080"); err != nil {
		t.Fatalf("Deregister failed: %v", err)
	}
	agent.mu.Lock()
	n := len(agent.registered)
	agent.mu.Unlock()
	if n != 0 {
		t.Errorf("expected agent to be empty, got %d", n)
	}
	if _, err := p.Discover(ctx, "orders"); !errors.Is(err, discovery.ErrNoHealthyEndpoints) {
		t.Errorf("expected ErrNoHealthyEndpoints, got %v", err)
	}
}

func TestProviderHealthCheckRegistration(t *testing.T) {
	agent, srv := newFakeAgent(t)
	p, err := NewProvider(discovery.Config{
		HealthCheckPath:     "/health",
		HealthCheckInterval: 10 * time.Second,
		HealthCheckTimeout:  time.Second,
		DeregisterAfter:     time.Minute,
	}, Config{Address: strings.TrimPrefix(srv.URL, "http://")}, logger.NewNop())
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	p.Register(context.Background(), &discovery.ServiceInfo{ID: "a", Name: "orders", Address: "box-1", Port: 8080})
	p.Register(context.Background(), &discovery.ServiceInfo{ID: "b", Name: "orders", Address: "box-1", Port: 0})

	agent.mu.Lock()
	defer agent.mu.Unlock()
	if chk := agent.registered["a"].Check; chk == nil || chk.HTTP != "http://box-1:8080/health" {
		t.Errorf("unexpected check %+v", chk)
	}
	if agent.registered["b"].Check != nil {
		t.Error("expected no check for an instance without a port")
	}
}

func TestProviderWatch(t *testing.T) {
	_, srv := newFakeAgent(t)
	p := newTestProvider(t, srv)
	ctx, cancel := context.WithCancel(context.Background())

	p.Register(ctx, &discovery.ServiceInfo{ID: "a", Name: "orders", Address: "box-1", Port: 8080})
	ch, err := p.Watch(ctx, "orders")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	select {
	case got := <-ch:
		if len(got) != 1 || got[0].ID != "a" {
			t.Errorf("unexpected watch update %v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch update")
	}

	cancel()
	for range ch {
	}
}

func TestServiceEntryToInstance(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name  string
		entry *api.ServiceEntry
		check func(t *testing.T, inst discovery.ServiceInstance)
	}{
		{
			name: "protocol from meta wins over tags",
			entry: &api.ServiceEntry{Service: &api.AgentService{
				Service: "orders", Address: "box-1", Tags: []string{"http"}, Meta: map[string]string{"protocol": "grpc"},
			}},
			check: func(t *testing.T, inst discovery.ServiceInstance) {
				if inst.Protocol != "grpc" {
					t.Errorf("expected grpc, got %q", inst.Protocol)
				}
			},
		},
		{
			name: "failing check marks unhealthy",
			entry: &api.ServiceEntry{
				Service: &api.AgentService{Service: "orders"},
				Checks:  api.HealthChecks{{Status: api.HealthPassing}, {Status: api.HealthCritical}},
			},
			check: func(t *testing.T, inst discovery.ServiceInstance) {
				if inst.Health != discovery.HealthUnhealthy {
					t.Errorf("expected unhealthy, got %s", inst.Health)
				}
			},
		},
		{
			name: "empty address falls back to node",
			entry: &api.ServiceEntry{
				Node:    &api.Node{Address: "10.0.0.9"},
				Service: &api.AgentService{Service: "orders", Port: 80},
			},
			check: func(t *testing.T, inst discovery.ServiceInstance) {
				if inst.Address != "10.0.0.9" {
					t.Errorf("expected node address, got %q", inst.Address)
				}
			},
		},
		{
			name:  "bad weight is ignored",
			entry: &api.ServiceEntry{Service: &api.AgentService{Meta: map[string]string{"weight": "x"}}},
			check: func(t *testing.T, inst discovery.ServiceInstance) {
				if inst.Weight != 0 {
					t.Errorf("expected weight 0, got %d", inst.Weight)
				}
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, serviceEntryToInstance(tc.entry, now))
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"bad scheme", Config{Scheme: "ftp"}, true},
		{"tls over http", Config{TLS: &TLSConfig{Enabled: true}}, true},
		{"tls over https", Config{Scheme: "https", TLS: &TLSConfig{Enabled: true}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr != (err != nil) {
				t.Errorf("wantErr=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestFactoryRegistered(t *testing.T) {
	if discovery.ShouldUseLocalFallback(discovery.Config{Enabled: true, Provider: ProviderName}) {
		t.Error("linking the consul package must disable the local fallback")
	}
}
