// Package httpapi serves the cached stories as a read-only JSON API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bnema/hnglance/internal/adapters/schedule"
	"github.com/bnema/hnglance/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type RecordLister interface {
	Records(ctx context.Context) ([]domain.Record, error)
}

type StatusProvider interface {
	Status() schedule.Status
}

type ItemView struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	URL               string    `json:"url,omitempty"`
	By                string    `json:"by,omitempty"`
	Score             int       `json:"score"`
	Comments          int       `json:"comments"`
	PostedAt          time.Time `json:"posted_at,omitzero"`
	UpdatedAt         time.Time `json:"updated_at"`
	PageSummary       string    `json:"page_summary,omitempty"`
	DiscussionSummary string    `json:"discussion_summary,omitempty"`
}

func NewItemView(record domain.Record) ItemView {
	return ItemView{
		ID:                int64(record.ID),
		Title:             record.Info.Title,
		URL:               record.Info.URL,
		By:                record.Info.By,
		Score:             record.Info.Score,
		Comments:          record.Info.Descendants,
		PostedAt:          record.Info.OriginTime(),
		UpdatedAt:         record.UpdatedAt,
		PageSummary:       record.PageSummary,
		DiscussionSummary: record.DiscussionSummary,
	}
}

type handler struct {
	records RecordLister
	status  StatusProvider
	logger  zerolog.Logger
}

// NewRouter builds the API routes. status may be nil when no scheduler runs.
func NewRouter(records RecordLister, status StatusProvider, logger zerolog.Logger) http.Handler {
	h := &handler{records: records, status: status, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", h.handleHealth)
	r.Get("/status", h.handleStatus)
	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.handleItems)
		r.Get("/{id}", h.handleItem)
	})

	return r
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	if h.status == nil {
		writeError(w, http.StatusNotFound, "scheduler is not running")
		return
	}
	writeJSON(w, http.StatusOK, h.status.Status())
}

func (h *handler) handleItems(w http.ResponseWriter, r *http.Request) {
	records, err := h.records.Records(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list records")
		writeError(w, http.StatusInternalServerError, "snapshot unavailable")
		return
	}

	items := make([]ItemView, 0, len(records))
	for _, record := range records {
		items = append(items, NewItemView(record))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handler) handleItem(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseItemID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	records, err := h.records.Records(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list records")
		writeError(w, http.StatusInternalServerError, "snapshot unavailable")
		return
	}

	for _, record := range records {
		if record.ID == id {
			writeJSON(w, http.StatusOK, NewItemView(record))
			return
		}
	}
	writeError(w, http.StatusNotFound, "item not cached")
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Msg("http request")
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Serve runs the server until ctx is cancelled and then shuts it down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger zerolog.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("http api listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
