// Package server exposes the alarm views and operational endpoints over
// HTTP. View queries are pass-through projections of the store; they fail
// only when the store itself is unreachable.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"plc-alarm-worker/internal/store"
)

// AlarmViews serves the two read views.
type AlarmViews interface {
	LiveAlarms(ctx context.Context, now time.Time) ([]store.LiveAlarm, error)
	HistoryAlarms(ctx context.Context) ([]store.HistoryAlarm, error)
}

// AlarmAcker records operator acknowledgements.
type AlarmAcker interface {
	Acknowledge(ctx context.Context, id int64, ackTime int64) error
}

// Handler bundles the HTTP endpoints of the worker
type Handler struct {
	views  AlarmViews
	acker  AlarmAcker
	logger *zap.Logger
}

// NewHandler creates the HTTP handler for views, acknowledgement and ops endpoints
func NewHandler(views AlarmViews, acker AlarmAcker, logger *zap.Logger) http.Handler {
	h := &Handler{views: views, acker: acker, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/alarms/live", h.handleLive)
	mux.HandleFunc("GET /api/alarms/history", h.handleHistory)
	mux.HandleFunc("POST /api/alarms/{id}/acknowledge", h.handleAcknowledge)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	rows, err := h.views.LiveAlarms(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("live alarms query failed", zap.Error(err))
		http.Error(w, "query live alarms error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.views.HistoryAlarms(r.Context())
	if err != nil {
		h.logger.Error("history alarms query failed", zap.Error(err))
		http.Error(w, "query history alarms error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (h *Handler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid alarm id", http.StatusBadRequest)
		return
	}

	if err := h.acker.Acknowledge(r.Context(), id, time.Now().UnixMilli()); err != nil {
		h.logger.Warn("acknowledge failed", zap.Int64("alarm_id", id), zap.Error(err))
		http.Error(w, "acknowledge error", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if v == nil {
		v = []struct{}{}
	}
	_ = json.NewEncoder(w).Encode(v)
}

// NewServer creates the HTTP server and ties it to the fx lifecycle
func NewServer(lc fx.Lifecycle, handler http.Handler, port int, logger *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
			}
			logger.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server stopped unexpectedly", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("http server shutdown failed", zap.Error(err))
				return err
			}
			logger.Info("http server stopped")
			return nil
		},
	})

	return srv
}
