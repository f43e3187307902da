// Package api provides the HTTP API the game UI uses to drive the labor market.
// GET endpoints are read-only. POST endpoints mutate the session and are rate
// limited; speed and rebuild controls also require the admin bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talgya/laborsim/internal/brigade"
	"github.com/talgya/laborsim/internal/employment"
	"github.com/talgya/laborsim/internal/engine"
	"github.com/talgya/laborsim/internal/market"
	"github.com/talgya/laborsim/internal/persistence"
	"github.com/talgya/laborsim/internal/workers"
)

// Server serves the labor market over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB // optional; enables /snapshot
	Port     int
	AdminKey string // Bearer token for admin endpoints. Empty = admin disabled.
	Logger   *slog.Logger

	srv *http.Server
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	mutations := NewRateLimiter(120, time.Minute)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)
		r.Get("/market", s.handleMarket)
		r.Get("/market/level/{level}", s.handleMarketForLevel)
		r.Get("/workers/{id}", s.handleWorker)
		r.Get("/brigades/{id}", s.handleBrigade)
		r.Get("/foremen/{id}/active", s.handleForemanActive)
		r.Get("/professions/{name}/limited", s.handleProfessionLimited)
		r.Get("/categories/{category}/limited", s.handleCategoryLimited)

		r.Group(func(r chi.Router) {
			r.Use(mutations.Middleware)
			r.Post("/workers/{id}/hire", s.handleHire)
			r.Post("/workers/{id}/fire", s.handleFire)
			r.Post("/workers/{id}/upgrade", s.handleUpgrade)
			r.Post("/brigades/{id}/activate", s.handleActivate)
			r.Post("/brigades/{id}/deactivate", s.handleDeactivate)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.adminOnly)
			r.Post("/market/rebuild", s.handleRebuild)
			r.Post("/level", s.handleLevel)
			r.Post("/speed", s.handleSpeed)
			r.Post("/snapshot", s.handleSnapshot)
		})
	})

	return r
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	s.logger().Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger().Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops the server started by Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger().Debug("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no admin key set)", http.StatusForbidden)
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token != s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Status())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.Sim.Events(limit))
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Market())
}

func (s *Server) handleMarketForLevel(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil || !market.KnownLevel(level) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("level must be an integer in %d..%d", workers.MinLevel, workers.MaxLevel))
		return
	}
	writeJSON(w, http.StatusOK, s.Sim.GetWorkersForLevel(level))
}

func (s *Server) handleWorker(w http.ResponseWriter, r *http.Request) {
	worker, ok := s.Sim.Worker(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "worker not found")
		return
	}
	writeJSON(w, http.StatusOK, worker)
}

func (s *Server) handleBrigade(w http.ResponseWriter, r *http.Request) {
	b, ok := s.Sim.Brigade(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "brigade not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleForemanActive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"active": s.Sim.IsForemanActive(chi.URLParam(r, "id"))})
}

func (s *Server) handleProfessionLimited(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"limited": s.Sim.IsProfessionLimited(chi.URLParam(r, "name"))})
}

func (s *Server) handleCategoryLimited(w http.ResponseWriter, r *http.Request) {
	cat, ok := workers.ParseCategory(chi.URLParam(r, "category"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"limited": s.Sim.IsCategoryAtLimit(cat)})
}

func (s *Server) handleHire(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BrigadeID string `json:"brigade_id"`
	}
	if !decodeOptional(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.Sim.HireWorker(id, req.BrigadeID); err != nil {
		writeDomainError(w, err)
		return
	}
	worker, _ := s.Sim.Worker(id)
	writeJSON(w, http.StatusOK, worker)
}

func (s *Server) handleFire(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sim.FireWorker(id); err != nil {
		writeDomainError(w, err)
		return
	}
	worker, _ := s.Sim.Worker(id)
	writeJSON(w, http.StatusOK, worker)
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sim.UpgradeWorker(id); err != nil {
		writeDomainError(w, err)
		return
	}
	worker, _ := s.Sim.Worker(id)
	writeJSON(w, http.StatusOK, worker)
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"order_id"`
	}
	if !decodeOptional(w, r, &req) {
		return
	}
	if req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "order_id is required")
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.Sim.ActivateBrigade(id, req.OrderID); err != nil {
		writeDomainError(w, err)
		return
	}
	b, _ := s.Sim.Brigade(id)
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sim.DeactivateBrigade(id); err != nil {
		writeDomainError(w, err)
		return
	}
	b, _ := s.Sim.Brigade(id)
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.RebuildMarket())
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Level int `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.Sim.SetLevel(req.Level)
	writeJSON(w, http.StatusOK, s.Sim.Status())
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		writeError(w, http.StatusConflict, "no calendar attached")
		return
	}
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Speed < 0 {
		writeError(w, http.StatusBadRequest, "speed must be a non-negative number")
		return
	}
	s.Eng.SetSpeed(req.Speed)
	s.logger().Info("speed changed", "speed", req.Speed)
	writeJSON(w, http.StatusOK, map[string]any{"speed": req.Speed, "running": s.Eng.Running()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusConflict, "no database attached")
		return
	}
	if err := s.DB.SaveSimulation(s.Sim); err != nil {
		s.logger().Error("snapshot failed", "error", err)
		writeError(w, http.StatusInternalServerError, "snapshot failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// decodeOptional decodes a JSON body when one is present.
func decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, employment.ErrWorkerNotFound),
		errors.Is(err, brigade.ErrBrigadeNotFound),
		errors.Is(err, brigade.ErrForemanNotFound):
		return http.StatusNotFound
	case errors.Is(err, employment.ErrAlreadyHired),
		errors.Is(err, employment.ErrNotHired),
		errors.Is(err, employment.ErrWorkerResting),
		errors.Is(err, employment.ErrMaxSkill),
		errors.Is(err, brigade.ErrAlreadyMember):
		return http.StatusConflict
	case errors.Is(err, employment.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, employment.ErrProfessionLimitReached),
		errors.Is(err, employment.ErrCategoryLimitReached):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
