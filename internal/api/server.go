// Package api hosts the HTTP endpoint the dispatcher backend pushes
// notifications to, plus health and metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ajubot/volunteer-bot/internal/models"
	"github.com/ajubot/volunteer-bot/internal/services"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server receives backend hooks and forwards them to the notification
// manager.
type Server struct {
	notifications *services.NotificationManager
	httpServer    *http.Server
}

func NewServer(addr string, notifications *services.NotificationManager) *Server {
	s := &Server{notifications: notifications}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /assistance/new", s.handleNew)
	mux.HandleFunc("POST /assistance/assign", s.handleAssign)
	mux.HandleFunc("POST /assistance/cancel", s.handleCancel)
	mux.HandleFunc("GET /introspect", s.handleIntrospect)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           correlate(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// correlate tags every hook delivery with an id so log lines of one
// delivery can be grepped together.
func correlate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		log.Printf("[API] %s %s %s", id, r.Method, r.URL.Path)
		w.Header().Set("X-Correlation-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	var req models.AssistanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, "request_id is required", http.StatusBadRequest)
		return
	}

	if err := s.notifications.NewRequest(r.Context(), &req); err != nil {
		log.Printf("[API] new request %s: %v", req.ID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type assignPayload struct {
	RequestID string `json:"request_id"`
	Volunteer int64  `json:"volunteer"`
	Time      string `json:"time"`
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var p assignPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if p.RequestID == "" {
		http.Error(w, "request_id is required", http.StatusBadRequest)
		return
	}

	if err := s.notifications.Assign(r.Context(), p.RequestID, p.Volunteer, p.Time); err != nil {
		log.Printf("[API] assign %s: %v", p.RequestID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type cancelPayload struct {
	RequestID string `json:"request_id"`
	Volunteer int64  `json:"volunteer"`
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var p cancelPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if p.RequestID == "" {
		http.Error(w, "request_id is required", http.StatusBadRequest)
		return
	}

	if err := s.notifications.Cancel(r.Context(), p.RequestID, p.Volunteer); err != nil {
		log.Printf("[API] cancel %s: %v", p.RequestID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleIntrospect(w http.ResponseWriter, r *http.Request) {
	snap, err := s.notifications.Introspect()
	if err != nil {
		log.Printf("[API] introspect: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		log.Printf("[API] encode snapshot: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
