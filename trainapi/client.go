// ABOUTME: HTTP client for a remote training endpoint and its run archive.
// ABOUTME: Transport errors, non-2xx statuses, undecodable bodies, and failed shape checks are all failures.
package trainapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/2389-research/sapling/dtree"
	"github.com/2389-research/sapling/playback"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 32 << 20

// Client talks to a sapling server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for baseURL (e.g. "http://127.0.0.1:2390").
// A nil httpClient gets a 30 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Train implements playback.Trainer.
func (c *Client) Train(ctx context.Context, req playback.Request) (dtree.History, error) {
	resp, err := c.TrainResponse(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.History, nil
}

// TrainResponse requests a training run and returns the checked envelope.
func (c *Client) TrainResponse(ctx context.Context, req playback.Request) (Response, error) {
	var resp Response
	if err := c.getJSON(ctx, "/api/train?"+Query(req).Encode(), &resp); err != nil {
		return Response{}, err
	}
	if err := resp.Check(); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// Run fetches an archived run by ID.
func (c *Client) Run(ctx context.Context, id string) (Response, error) {
	var resp Response
	if err := c.getJSON(ctx, "/api/runs/"+url.PathEscape(id), &resp); err != nil {
		return Response{}, err
	}
	if err := resp.Check(); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// Runs lists archived runs, newest first.
func (c *Client) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	var out struct {
		Runs []RunSummary `json:"runs"`
	}
	if err := c.getJSON(ctx, "/api/runs?limit="+strconv.Itoa(limit), &out); err != nil {
		return nil, err
	}
	return out.Runs, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env Response
		if json.Unmarshal(body, &env) == nil && env.Error != "" {
			return fmt.Errorf("%w: http %d: %s", ErrBadResponse, resp.StatusCode, env.Error)
		}
		return fmt.Errorf("%w: http %d", ErrBadResponse, resp.StatusCode)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrBadResponse, err)
	}
	return nil
}
