// Package handler is the dashboard's thin HTTP layer. It delegates to the
// dashboard service and the view renderers; no KPI logic lives here.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trainkpi/internal/dashboard"
	"trainkpi/internal/dashboard/metrics"
	"trainkpi/internal/dashboard/view"
	"trainkpi/internal/history"
	"trainkpi/internal/platform/middleware"
	"trainkpi/pkg/kpierrors"
	"trainkpi/pkg/requestcontext"
)

// Service defines the dashboard operations the handler needs.
type Service interface {
	View(ctx context.Context, month string) (dashboard.MonthView, error)
	Refresh() bool
}

// Handler serves the dashboard pages.
type Handler struct {
	logger  *slog.Logger
	service Service
	metrics *metrics.Metrics
}

// New creates a dashboard Handler.
func New(service Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		metrics: m,
	}
}

// Register registers the dashboard routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Get("/", h.timed("index", h.handleIndex))
	router.Get("/chart", h.timed("chart", h.handleChart))
	router.Post("/refresh", h.timed("refresh", h.handleRefresh))
	router.Get("/healthz", h.handleHealth)

	r.Mount("/", router)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	month := r.URL.Query().Get("month")

	monthView, err := h.service.View(ctx, month)
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.RenderPage(w, monthView); err != nil {
		h.logger.ErrorContext(ctx, "render page",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	month := r.URL.Query().Get("month")

	monthView, err := h.service.View(ctx, month)
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.RenderChart(w, monthView); err != nil {
		h.logger.ErrorContext(ctx, "render chart",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
}

// handleRefresh invalidates the live computation cache. History mode has
// nothing to refresh; the store is re-read on every request anyway.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !h.service.Refresh() {
		http.Error(w, "refresh is only available in live mode", http.StatusConflict)
		return
	}
	h.metrics.IncrementRefreshes()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// renderFailure shows a user-visible error page; an empty result must not
// render as a blank dashboard.
func (h *Handler) renderFailure(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := http.StatusInternalServerError
	message := "Data loading failed. Check the inputs folder and the history store."

	if errors.Is(err, history.ErrNoHistory) {
		status = http.StatusNotFound
		message = "No report data available yet. Run the pipeline first."
	} else if kpierrors.Is(err, kpierrors.CodeNotFound) {
		status = http.StatusNotFound
		var coded *kpierrors.Error
		if errors.As(err, &coded) {
			message = coded.Message
		}
	}

	h.logger.ErrorContext(ctx, "dashboard data load failed",
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = view.RenderError(w, message)
}

func (h *Handler) timed(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		h.metrics.ObserveRequest(route, time.Since(start))
	}
}
