package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticHealth struct {
	healthy    bool
	components map[string]bool
}

func (s staticHealth) IsHealthy() bool              { return s.healthy }
func (s staticHealth) Components() map[string]bool { return s.components }

func checkHealth(t *testing.T, src HealthSource) map[string]interface{} {
	t.Helper()
	h := NewHealthHandler(src)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	h.CheckHealth(w, req)
	if code := w.Result().StatusCode; code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", code)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body
}

func TestHealthHandler_Healthy(t *testing.T) {
	body := checkHealth(t, staticHealth{healthy: true, components: map[string]bool{"store": true, "oracle": false}})
	if body["status"] != "healthy" {
		t.Fatalf("expected healthy, got %v", body["status"])
	}
	comps, ok := body["components"].(map[string]interface{})
	if !ok || comps["oracle"] != false || comps["store"] != true {
		t.Fatalf("unexpected components: %v", body["components"])
	}
}

func TestHealthHandler_NilSourceIsUnhealthy(t *testing.T) {
	body := checkHealth(t, nil)
	if body["status"] != "unhealthy" {
		t.Fatalf("expected unhealthy, got %v", body["status"])
	}
	if _, ok := body["timestamp"].(string); !ok {
		t.Fatalf("missing timestamp")
	}
}
