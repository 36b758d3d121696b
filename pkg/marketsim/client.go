// Package marketsim provides a Go client for the marketsim-server API.
package marketsim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"marketsim/internal/domain"
)

// Client talks to a running marketsim-server instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new marketsim API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("marketsim: %d %s", e.StatusCode, e.Message)
}

// GetMarket retrieves the latest market snapshot.
func (c *Client) GetMarket(ctx context.Context) (*domain.MarketSnapshot, error) {
	var snap domain.MarketSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/market", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// TickRow is one entry of the recorded tick history.
type TickRow struct {
	ID          int64   `json:"id"`
	Timestamp   int64   `json:"timestamp"`
	Price       float64 `json:"price"`
	TotalAssets float64 `json:"totalAssets"`
	TotalCash   float64 `json:"totalCash"`
	AgentCount  int64   `json:"agentCount"`
}

// GetHistory retrieves up to limit recorded ticks, oldest first. A
// non-positive limit fetches the full history.
func (c *Client) GetHistory(ctx context.Context, limit int) ([]TickRow, error) {
	path := "/api/market/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Ticks []TickRow `json:"ticks"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Ticks, nil
}

// AddAgent admits a new agent. The agent type is "MM" (or "MARKET_MAKER")
// or "RT" (or "RANDOM_TRADER"). An empty name lets the server pick one.
// The assigned name is returned.
func (c *Client) AddAgent(ctx context.Context, agentType, name string, initialCash float64) (string, error) {
	body := map[string]any{
		"type":        agentType,
		"name":        name,
		"initialCash": initialCash,
	}
	var out struct {
		Name string `json:"name"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/agents", body, &out); err != nil {
		return "", err
	}
	return out.Name, nil
}

// UpdateRates changes the funding and/or dividend rate. Nil leaves a rate
// unchanged.
func (c *Client) UpdateRates(ctx context.Context, fundingRate, dividendRate *float64) error {
	body := map[string]any{}
	if fundingRate != nil {
		body["fundingRate"] = *fundingRate
	}
	if dividendRate != nil {
		body["dividendRate"] = *dividendRate
	}
	return c.do(ctx, http.MethodPatch, "/api/config", body, nil)
}

// Pause stops the tick loop.
func (c *Client) Pause(ctx context.Context) error {
	return c.do(ctx, http.MethodPatch, "/api/config/pause", nil, nil)
}

// Resume restarts a paused tick loop.
func (c *Client) Resume(ctx context.Context) error {
	return c.do(ctx, http.MethodPatch, "/api/config/resume", nil, nil)
}

// Reset rebuilds the simulation from its startup configuration.
func (c *Client) Reset(ctx context.Context) error {
	return c.do(ctx, http.MethodPatch, "/api/config/reset", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
