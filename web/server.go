// ABOUTME: Sapling HTTP server: control panel, help page, training and run archive API,
// ABOUTME: tree and feature-space image endpoints, playback websocket, metrics, and health behind one chi router.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/2389-research/sapling/dataset"
	"github.com/2389-research/sapling/metrics"
	"github.com/2389-research/sapling/playback"
	"github.com/2389-research/sapling/render"
	"github.com/2389-research/sapling/store"
	"github.com/2389-research/sapling/trainapi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the sapling HTTP server.
type Server struct {
	templates *TemplateEngine
	router    chi.Router
	addr      string

	archive    *store.Archive
	trainer    trainapi.Local
	treeCache  *render.RenderCache
	spaceCache *render.RenderCache
	interval   time.Duration
	sched      playback.Scheduler
}

// ServerConfig holds the configuration for the web server.
type ServerConfig struct {
	Addr     string         // listen address (default: "127.0.0.1:2390")
	Archive  *store.Archive // run archive; nil disables persistence
	Samples  int            // dataset size per training run
	Interval time.Duration  // auto-play tick period for websocket sessions
	CacheTTL time.Duration  // image cache entry lifetime

	// Scheduler overrides the websocket sessions' ticker; tests use it to step time.
	Scheduler playback.Scheduler
}

// NewServer creates a new Server with the given configuration.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:2390"
	}
	if cfg.Interval <= 0 {
		cfg.Interval = playback.DefaultInterval
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = playback.TickerScheduler{}
	}

	tmpl, err := NewTemplateEngine()
	if err != nil {
		return nil, fmt.Errorf("initializing templates: %w", err)
	}

	s := &Server{
		templates:  tmpl,
		addr:       cfg.Addr,
		archive:    cfg.Archive,
		trainer:    trainapi.Local{Options: dataset.Options{Samples: cfg.Samples}},
		treeCache:  render.NewRenderCache(renderTree, cfg.CacheTTL, render.WithHooks(metrics.CacheHit, metrics.CacheMiss)),
		spaceCache: render.NewRenderCache(renderSpace, cfg.CacheTTL, render.WithHooks(metrics.CacheHit, metrics.CacheMiss)),
		interval:   cfg.Interval,
		sched:      cfg.Scheduler,
	}

	s.router = s.buildRouter()
	return s, nil
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	go s.pruneCache(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("web server listening addr=%s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Printf("web server shutting down addr=%s", s.addr)
		return srv.Shutdown(shutdownCtx)
	}
}

// pruneCache drops expired images once a minute until ctx is done.
func (s *Server) pruneCache(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.treeCache.Prune() + s.spaceCache.Prune(); n > 0 {
				log.Printf("render cache pruned entries=%d", n)
			}
		}
	}
}

// buildRouter constructs the chi router with all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(webRequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/help", s.handleHelp)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub()))))
	r.Get("/ws/playback", s.handlePlaybackWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/train", s.handleTrain)
		r.Get("/datasets", s.handleDatasets)

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleRunList)
			r.Route("/{runID}", func(r chi.Router) {
				r.Get("/", s.handleRunGet)
				r.Delete("/", s.handleRunDelete)
				r.Get("/steps/{step}/tree.{format}", s.handleTreeImage)
				r.Get("/steps/{step}/space.{format}", s.handleSpaceImage)
			})
		})
	})

	return r
}

// handleIndex renders the control panel.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := PageData{
		Title:    "Decision Tree Playback",
		Datasets: dataset.Names(),
		Defaults: trainapi.DefaultRequest(),
		Interval: s.interval,
	}
	if err := s.templates.Render(w, "index.html", data); err != nil {
		log.Printf("web render page=index err=%v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// handleHealth returns a JSON health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web encode response err=%v", err)
	}
}
