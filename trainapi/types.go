// ABOUTME: Wire types for the training endpoint: query-string parameters and the JSON response envelope.
// ABOUTME: Check enforces the success shape so every other response is treated uniformly as failure.
package trainapi

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/2389-research/sapling/dataset"
	"github.com/2389-research/sapling/dtree"
	"github.com/2389-research/sapling/playback"
)

// ErrBadResponse is returned when a training response does not have the success shape.
var ErrBadResponse = errors.New("bad training response")

// StatusSuccess is the only status value that marks a usable response.
const StatusSuccess = "success"

// DefaultRequest is moons, depth 3, min samples 2, Gini.
func DefaultRequest() playback.Request {
	return playback.Request{Dataset: "moons", Params: dtree.DefaultParams()}
}

// Query encodes req as training endpoint query parameters.
func Query(req playback.Request) url.Values {
	return url.Values{
		"dataset":           {req.Dataset},
		"max_depth":         {strconv.Itoa(req.Params.MaxDepth)},
		"min_samples_split": {strconv.Itoa(req.Params.MinSamplesSplit)},
		"criterion":         {string(req.Params.Criterion)},
	}
}

// ParseQuery decodes training parameters, filling omitted values from DefaultRequest
// and validating the result.
func ParseQuery(q url.Values) (playback.Request, error) {
	req := DefaultRequest()

	if v := q.Get("dataset"); v != "" {
		req.Dataset = v
	}
	if !dataset.Known(req.Dataset) {
		return req, fmt.Errorf("%w: unknown dataset %q", dtree.ErrInvalidParams, req.Dataset)
	}

	var err error
	if req.Params.MaxDepth, err = intParam(q, "max_depth", req.Params.MaxDepth); err != nil {
		return req, err
	}
	if req.Params.MinSamplesSplit, err = intParam(q, "min_samples_split", req.Params.MinSamplesSplit); err != nil {
		return req, err
	}
	if v := q.Get("criterion"); v != "" {
		if req.Params.Criterion, err = dtree.ParseCriterion(v); err != nil {
			return req, err
		}
	}

	if err := req.Params.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

func intParam(q url.Values, key string, fallback int) (int, error) {
	v := q.Get(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", dtree.ErrInvalidParams, key, v)
	}
	return n, nil
}

// Data is the raw dataset a run was trained on.
type Data struct {
	X [][2]float64 `json:"X"`
	Y []int        `json:"y"`
}

// Response is the training endpoint envelope.
type Response struct {
	Status  string        `json:"status"`
	History dtree.History `json:"history,omitempty"`
	Data    *Data         `json:"data,omitempty"`
	RunID   string        `json:"run_id,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Check returns nil only for a success response carrying a non-empty, valid history.
func (r Response) Check() error {
	if r.Status != StatusSuccess {
		if r.Error != "" {
			return fmt.Errorf("%w: status %q: %s", ErrBadResponse, r.Status, r.Error)
		}
		return fmt.Errorf("%w: status %q", ErrBadResponse, r.Status)
	}
	if err := r.History.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return nil
}

// RunSummary is one entry of the run archive listing.
type RunSummary struct {
	ID        string `json:"id"`
	Dataset   string `json:"dataset"`
	MaxDepth  int    `json:"max_depth"`
	MinSplit  int    `json:"min_samples_split"`
	Criterion string `json:"criterion"`
	Steps     int    `json:"steps"`
	CreatedAt string `json:"created_at"`
}
