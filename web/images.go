// ABOUTME: Image endpoints for one step of an archived run: the tree diagram via graphviz and the
// ABOUTME: feature-space scatter via go-chart, both served through TTL render caches.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/2389-research/sapling/dtree"
	"github.com/2389-research/sapling/metrics"
	"github.com/2389-research/sapling/render"
	"github.com/2389-research/sapling/viz"
	"github.com/go-chi/chi/v5"
)

var contentTypes = map[string]string{
	"svg": "image/svg+xml",
	"png": "image/png",
	"dot": "text/vnd.graphviz; charset=utf-8",
}

// renderTree is the tree cache's RenderFunc; source is DOT text.
func renderTree(ctx context.Context, source, format string) ([]byte, error) {
	start := time.Now()
	defer func() { metrics.RenderDuration.WithLabelValues("tree", format).Observe(time.Since(start).Seconds()) }()
	return render.RenderDOTSource(ctx, source, format)
}

// renderSpace is the space cache's RenderFunc; source is a JSON-encoded viz.SpaceChart.
func renderSpace(ctx context.Context, source, format string) ([]byte, error) {
	start := time.Now()
	defer func() { metrics.RenderDuration.WithLabelValues("space", format).Observe(time.Since(start).Seconds()) }()

	var c viz.SpaceChart
	if err := json.Unmarshal([]byte(source), &c); err != nil {
		return nil, fmt.Errorf("decode space chart: %w", err)
	}
	var buf bytes.Buffer
	if err := viz.RenderSpace(c, format, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// handleTreeImage serves /api/runs/{runID}/steps/{step}/tree.{svg|png|dot}.
func (s *Server) handleTreeImage(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if format != "svg" && format != "png" && format != "dot" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported format %q: supported formats are dot, svg, png", format))
		return
	}
	snap, ok := s.loadStep(w, r)
	if !ok {
		return
	}
	if format != "dot" && !render.GraphvizAvailable() {
		writeError(w, http.StatusServiceUnavailable, errors.New("graphviz dot command not found"))
		return
	}

	data, err := s.treeCache.Render(r.Context(), render.ToDOT(snap), format)
	if err != nil {
		log.Printf("web tree render failed format=%s err=%v", format, err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeImage(w, format, data)
}

// handleSpaceImage serves /api/runs/{runID}/steps/{step}/space.{png|svg}.
func (s *Server) handleSpaceImage(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if format != "svg" && format != "png" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported format %q: supported formats are png, svg", format))
		return
	}
	snap, ok := s.loadStep(w, r)
	if !ok {
		return
	}

	surface := viz.Surface{
		Name:   viz.SurfaceSpace,
		Width:  queryInt(r, "width", viz.DefaultImageWidth),
		Height: queryInt(r, "height", viz.DefaultImageHeight),
	}
	source, err := json.Marshal(viz.BuildSpace(snap, surface))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	data, err := s.spaceCache.Render(r.Context(), string(source), format)
	if err != nil {
		log.Printf("web space render failed format=%s err=%v", format, err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeImage(w, format, data)
}

// loadStep resolves the {runID} and {step} URL params to a snapshot.
func (s *Server) loadStep(w http.ResponseWriter, r *http.Request) (dtree.Snapshot, bool) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return dtree.Snapshot{}, false
	}
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil || step < 0 || step >= len(run.History) {
		writeError(w, http.StatusNotFound, fmt.Errorf("step %q out of range [0, %d)", chi.URLParam(r, "step"), len(run.History)))
		return dtree.Snapshot{}, false
	}
	return run.History[step], true
}

func writeImage(w http.ResponseWriter, format string, data []byte) {
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("web write image err=%v", err)
	}
}

// queryInt reads a positive integer query parameter, capped at 4096.
func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return fallback
	}
	if n > 4096 {
		return 4096
	}
	return n
}
