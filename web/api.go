// ABOUTME: JSON API handlers for training, dataset listing, and the run archive.
// ABOUTME: Training runs in-process, records metrics, and archives each successful run when an archive is configured.
package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/2389-research/sapling/dataset"
	"github.com/2389-research/sapling/dtree"
	"github.com/2389-research/sapling/metrics"
	"github.com/2389-research/sapling/playback"
	"github.com/2389-research/sapling/store"
	"github.com/2389-research/sapling/trainapi"
	"github.com/go-chi/chi/v5"
)

const defaultRunListLimit = 20

// train runs req in-process and archives the result.
func (s *Server) train(ctx context.Context, req playback.Request) (trainapi.Response, error) {
	start := time.Now()
	resp, err := s.trainer.Run(ctx, req)
	metrics.TrainingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TrainingsTotal.WithLabelValues(req.Dataset, "error").Inc()
		return trainapi.Response{}, err
	}
	metrics.TrainingsTotal.WithLabelValues(req.Dataset, "success").Inc()
	metrics.HistorySteps.Observe(float64(len(resp.History)))

	if s.archive != nil {
		run, err := s.archive.Save(store.Run{
			Dataset: req.Dataset,
			Params:  req.Params,
			History: resp.History,
			X:       resp.Data.X,
			Y:       resp.Data.Y,
		})
		if err != nil {
			log.Printf("web archive save failed dataset=%s err=%v", req.Dataset, err)
		} else {
			metrics.RunsArchived.Inc()
			resp.RunID = run.ID
		}
	}
	log.Printf("web training done dataset=%s max_depth=%d criterion=%s steps=%d run=%s duration=%s",
		req.Dataset, req.Params.MaxDepth, req.Params.Criterion, len(resp.History), resp.RunID,
		time.Since(start).Round(time.Microsecond))
	return resp, nil
}

// archiveTrainer adapts Server.train to playback.Trainer for websocket sessions.
type archiveTrainer struct{ s *Server }

func (t archiveTrainer) Train(ctx context.Context, req playback.Request) (dtree.History, error) {
	resp, err := t.s.train(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.History, nil
}

// handleTrain serves GET /api/train.
func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	req, err := trainapi.ParseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := s.train(r.Context(), req)
	if err != nil {
		log.Printf("web training failed dataset=%s err=%v", req.Dataset, err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDatasets lists dataset names and the default training parameters.
func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"datasets":          dataset.Names(),
		"criteria":          dtree.Criteria(),
		"defaults":          trainapi.DefaultRequest(),
		"max_depth":         dtree.MaxDepthLimit,
		"min_samples_split": dtree.MinSplitSamples,
	})
}

// handleRunList serves GET /api/runs?limit=N.
func (s *Server) handleRunList(w http.ResponseWriter, r *http.Request) {
	if !s.requireArchive(w) {
		return
	}
	limit := defaultRunListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	runs, err := s.archive.List(limit)
	if err != nil {
		log.Printf("web archive list failed err=%v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]trainapi.RunSummary, 0, len(runs))
	for _, run := range runs {
		out = append(out, trainapi.RunSummary{
			ID:        run.ID,
			Dataset:   run.Dataset,
			MaxDepth:  run.Params.MaxDepth,
			MinSplit:  run.Params.MinSamplesSplit,
			Criterion: string(run.Params.Criterion),
			Steps:     run.Steps,
			CreatedAt: run.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": out})
}

// handleRunGet returns an archived run in the training response envelope.
func (s *Server) handleRunGet(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, trainapi.Response{
		Status:  trainapi.StatusSuccess,
		History: run.History,
		Data:    &trainapi.Data{X: run.X, Y: run.Y},
		RunID:   run.ID,
	})
}

// handleRunDelete removes an archived run.
func (s *Server) handleRunDelete(w http.ResponseWriter, r *http.Request) {
	if !s.requireArchive(w) {
		return
	}
	id := chi.URLParam(r, "runID")
	if err := s.archive.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadRun fetches the {runID} run, writing the error response itself on failure.
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (store.Run, bool) {
	if !s.requireArchive(w) {
		return store.Run{}, false
	}
	run, err := s.archive.Get(chi.URLParam(r, "runID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
		} else {
			log.Printf("web archive get failed err=%v", err)
			writeError(w, http.StatusInternalServerError, err)
		}
		return store.Run{}, false
	}
	return run, true
}

func (s *Server) requireArchive(w http.ResponseWriter) bool {
	if s.archive == nil {
		writeError(w, http.StatusNotImplemented, errors.New("run archive is disabled"))
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, trainapi.Response{Status: "error", Error: err.Error()})
}
