package api_test

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/lokey/fortuna-core/pkg/api"
	"github.com/lokey/fortuna-core/pkg/fortuna"
	"github.com/lokey/fortuna-core/pkg/primitives"
)

type fakeTimer struct{ elapsedMs uint64 }

func (f *fakeTimer) ElapsedMs() uint64 { return f.elapsedMs }
func (f *fakeTimer) Reset()            { f.elapsedMs = 0 }

func setupTestServer() (*api.Server, *prometheus.Registry) {
	acc := fortuna.New(primitives.NewAES256PRF, primitives.NewSHA256d, &fakeTimer{elapsedMs: 1 << 30})
	reg := prometheus.NewRegistry()
	return api.NewServer(acc, nil, 0, reg), reg
}

func seedServer(t *testing.T, server *api.Server) {
	t.Helper()
	zero := hex.EncodeToString(make([]byte, 32))
	for i := 0; i < 2; i++ {
		body, _ := json.Marshal(api.EventRequest{SourceID: 0, PoolIndex: 0, Data: zero})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		server.Router.ServeHTTP(w, req)
		if w.Code != http.StatusAccepted {
			t.Fatalf("seeding event rejected: %d %s", w.Code, w.Body.String())
		}
	}
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		metrics := f.GetMetric()
		if len(metrics) == 0 {
			t.Fatalf("metric family %s has no samples", name)
		}
		return getGaugeOrCounterValue(metrics[0])
	}
	t.Fatalf("metric family %s not found", name)
	return 0
}

func getGaugeOrCounterValue(m *dto.Metric) float64 {
	if g := m.GetGauge(); g != nil {
		return g.GetValue()
	}
	if c := m.GetCounter(); c != nil {
		return c.GetValue()
	}
	return 0
}

func TestHealthCheck(t *testing.T) {
	t.Run("reports unseeded before any entropy is added", func(t *testing.T) {
		server, _ := setupTestServer()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		server.Router.ServeHTTP(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", w.Code)
		}
		var resp api.HealthResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Seeded {
			t.Error("expected seeded=false before any entropy is added")
		}
	})

	t.Run("reports seeded once a random request has triggered the first reseed", func(t *testing.T) {
		server, _ := setupTestServer()
		seedServer(t, server)

		// Ingesting events alone does not reseed; the first reseed happens
		// inside the next random data request.
		body, _ := json.Marshal(api.RandomRequest{Size: 8})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/random", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		server.Router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("random request: expected 200, got %d: %s", w.Code, w.Body.String())
		}

		w = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/health", nil)
		server.Router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})
}

func TestAddEvent(t *testing.T) {
	t.Run("accepted event then random data round trip", func(t *testing.T) {
		server, _ := setupTestServer()
		seedServer(t, server)

		body, _ := json.Marshal(api.RandomRequest{Size: 32})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/random", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		server.Router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp api.RandomResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Size != 32 {
			t.Errorf("expected size 32, got %d", resp.Size)
		}
		decoded, err := hex.DecodeString(resp.Data)
		if err != nil || len(decoded) != 32 {
			t.Errorf("expected 32 decoded bytes, got %d (err=%v)", len(decoded), err)
		}
	})

	t.Run("rejects oversize data", func(t *testing.T) {
		server, _ := setupTestServer()

		oversized := hex.EncodeToString(make([]byte, 33))
		body, _ := json.Marshal(api.EventRequest{SourceID: 1, PoolIndex: 0, Data: oversized})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		server.Router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects invalid pool index", func(t *testing.T) {
		server, _ := setupTestServer()

		body, _ := json.Marshal(api.EventRequest{SourceID: 1, PoolIndex: 32, Data: hex.EncodeToString([]byte{1, 2})})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		server.Router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("updates the pool-0 fill gauge", func(t *testing.T) {
		server, reg := setupTestServer()

		body, _ := json.Marshal(api.EventRequest{SourceID: 3, PoolIndex: 0, Data: hex.EncodeToString(make([]byte, 16))})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		server.Router.ServeHTTP(w, req)

		if w.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
		}

		if got := gaugeValue(t, reg, "fortuna_pool0_fill_bytes"); got == 0 {
			t.Errorf("expected non-zero pool0 fill gauge after ingesting an event, got %v", got)
		}
	})
}

func TestGetRandomData(t *testing.T) {
	t.Run("rejected before seeding", func(t *testing.T) {
		server, _ := setupTestServer()

		body, _ := json.Marshal(api.RandomRequest{Size: 16})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/random", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		server.Router.ServeHTTP(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects oversize request", func(t *testing.T) {
		server, _ := setupTestServer()
		seedServer(t, server)

		body, _ := json.Marshal(api.RandomRequest{Size: 1 << 21})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/random", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		server.Router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("resets the pool-0 fill gauge after a reseed harvests it", func(t *testing.T) {
		server, reg := setupTestServer()
		seedServer(t, server)

		if got := gaugeValue(t, reg, "fortuna_pool0_fill_bytes"); got == 0 {
			t.Fatalf("expected pool0 fill gauge to be non-zero once seeded, got %v", got)
		}

		body, _ := json.Marshal(api.RandomRequest{Size: 8})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/random", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		server.Router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		if got := gaugeValue(t, reg, "fortuna_pool0_fill_bytes"); got != 0 {
			t.Errorf("expected pool0 fill gauge reset to 0 after a reseed, got %v", got)
		}
		if got := gaugeValue(t, reg, "fortuna_reseeds_total"); got == 0 {
			t.Errorf("expected fortuna_reseeds_total to be incremented, got %v", got)
		}
	})
}

func TestMetricsHandler(t *testing.T) {
	t.Run("serves Prometheus exposition format", func(t *testing.T) {
		server, _ := setupTestServer()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		server.Router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if w.Body.Len() == 0 {
			t.Error("expected non-empty metrics body")
		}
	})
}
