package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naaf-labs/naaf-cli/internal/framework"
	"github.com/naaf-labs/naaf-cli/internal/model"
	"github.com/naaf-labs/naaf-cli/internal/monitoring"
	"github.com/naaf-labs/naaf-cli/internal/research"
	"github.com/naaf-labs/naaf-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initResearch(ctx, cfg.Research.Year, cfg.Research.Concurrency)
		if err != nil {
			return err
		}
		defer env.Close()

		api := newAPIServer(env.Store, env.Researcher)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// researchJob tracks one asynchronous assessment kicked off via the API.
type researchJob struct {
	ID        string    `json:"id"`
	Country   string    `json:"country"`
	Status    string    `json:"status"` // running, complete, failed
	RunID     string    `json:"run_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
}

type apiServer struct {
	store      store.Store
	researcher *research.Researcher
	collector  *monitoring.Collector

	mu   sync.RWMutex
	jobs map[string]*researchJob
}

func newAPIServer(st store.Store, r *research.Researcher) *apiServer {
	return &apiServer{
		store:      st,
		researcher: r,
		collector:  monitoring.NewCollector(st),
		jobs:       make(map[string]*researchJob),
	}
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/naaf", func(r chi.Router) {
		r.Get("/layers", s.handleLayers)
		r.Get("/tiers", s.handleTiers)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/stats", s.handleStats)
		r.Post("/research", s.handleResearch)
		r.Get("/jobs/{id}", s.handleGetJob)
	})
	return r
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleLayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, framework.All())
}

func (s *apiServer) handleTiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, framework.Tiers())
}

func (s *apiServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	runs, err := s.store.List(r.Context(), country, limit)
	if err != nil {
		zap.L().Error("list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

func (s *apiServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store.Get(r.Context(), id)
	if err != nil {
		if model.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		zap.L().Error("get run", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get run failed")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *apiServer) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.collector.Collect(r.Context())
	if err != nil {
		zap.L().Error("collect stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "collect stats failed")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *apiServer) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Country string `json:"country"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Country == "" {
		writeError(w, http.StatusBadRequest, "country is required")
		return
	}

	job := &researchJob{
		ID:        uuid.NewString(),
		Country:   req.Country,
		Status:    "running",
		StartedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	// Run the assessment detached from the request context so the client
	// can disconnect after the 202.
	go func() {
		stored, err := s.researcher.Assess(context.Background(), req.Country)
		s.mu.Lock()
		defer s.mu.Unlock()
		job.EndedAt = time.Now().UTC()
		if err != nil {
			job.Status = "failed"
			job.Error = err.Error()
			zap.L().Error("api assessment failed",
				zap.String("country", req.Country),
				zap.Error(err),
			)
			return
		}
		job.Status = "complete"
		job.RunID = stored.ID
		zap.L().Info("api assessment complete",
			zap.String("country", req.Country),
			zap.String("run_id", stored.ID),
			zap.Float64("score", stored.OverallScore),
		)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.ID,
		"country": req.Country,
		"status":  job.Status,
	})
}

func (s *apiServer) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.RLock()
	job, ok := s.jobs[id]
	var snapshot researchJob
	if ok {
		snapshot = *job
	}
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
