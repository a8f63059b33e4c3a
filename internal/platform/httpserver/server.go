package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	seedservice "dceseed/contexts/document-emission/seed-service"
	seeddomainerrors "dceseed/contexts/document-emission/seed-service/domain/errors"
	seedhttp "dceseed/contexts/document-emission/seed-service/transport/http"
	_ "dceseed/internal/platform/httpserver/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	seed   seedservice.Module
}

func New(seed seedservice.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		seed:   seed,
	}
	s.registerRoutes()
	return s
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped",
		"event", "http_server_stopped",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /v1/seed/runs/latest", s.handleLatestRun)
	s.mux.HandleFunc("POST /v1/seed/runs", s.handleTriggerRun)
	s.mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	resp, err := s.seed.Handler.LatestRunHandler(r.Context())
	if err != nil {
		writeSeedDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	var req seedhttp.TriggerRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeSeedError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	resp, err := s.seed.Handler.TriggerRunHandler(r.Context(), req)
	if err != nil {
		writeSeedDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if !resp.Succeeded {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

func writeSeedDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, seeddomainerrors.ErrInvalidSeedRequest):
		writeSeedError(w, http.StatusBadRequest, "invalid_seed_request", err.Error())
	case errors.Is(err, seeddomainerrors.ErrRunNotFound):
		writeSeedError(w, http.StatusNotFound, "run_not_found", err.Error())
	case errors.Is(err, seeddomainerrors.ErrQueueResolution):
		writeSeedError(w, http.StatusServiceUnavailable, "queue_unavailable", err.Error())
	case errors.Is(err, seeddomainerrors.ErrPersistFailed):
		writeSeedError(w, http.StatusBadGateway, "document_persist_failed", err.Error())
	default:
		writeSeedError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSeedError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, seedhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
