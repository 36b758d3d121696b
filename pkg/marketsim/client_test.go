package marketsim

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	c := NewClient(baseURL)

	if c == nil {
		t.Fatal("expected non-nil client")
	}
	if c.baseURL != baseURL {
		t.Errorf("expected baseURL %q, got %q", baseURL, c.baseURL)
	}
	if c.httpClient == nil {
		t.Fatal("expected non-nil httpClient")
	}
}

func TestGetMarket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/market" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price":101.5,"agents":[{"name":"MM1"}],"config":{}}`))
	}))
	defer srv.Close()

	snap, err := NewClient(srv.URL).GetMarket(context.Background())
	if err != nil {
		t.Fatalf("GetMarket: %v", err)
	}
	if snap.Price != 101.5 {
		t.Errorf("price = %v, want 101.5", snap.Price)
	}
	if len(snap.Agents) != 1 || snap.Agents[0].Name != "MM1" {
		t.Errorf("agents = %+v", snap.Agents)
	}
}

func TestGetHistoryPassesLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit = %q, want 5", got)
		}
		w.Write([]byte(`{"ticks":[{"id":1,"price":100}]}`))
	}))
	defer srv.Close()

	ticks, err := NewClient(srv.URL).GetHistory(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(ticks) != 1 || ticks[0].Price != 100 {
		t.Errorf("ticks = %+v", ticks)
	}
}

func TestAddAgentReturnsAssignedName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/agents" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"name":"MM3"}`))
	}))
	defer srv.Close()

	name, err := NewClient(srv.URL).AddAgent(context.Background(), "MM", "", 500)
	if err != nil {
		t.Fatalf("AddAgent: %v", err)
	}
	if name != "MM3" {
		t.Errorf("name = %q, want MM3", name)
	}
}

func TestErrorResponsesSurfaceAsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"initial cash must not be negative"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).AddAgent(context.Background(), "MM", "", -1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", apiErr.StatusCode)
	}
	if apiErr.Message != "initial cash must not be negative" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestControlEndpoints(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()
	if err := c.Pause(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.Resume(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	zero := 0.0
	if err := c.UpdateRates(ctx, &zero, nil); err != nil {
		t.Fatal(err)
	}

	want := []string{"/api/config/pause", "/api/config/resume", "/api/config/reset", "/api/config"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}
