package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"ouvipanel/internal/dataset"
	apierrors "ouvipanel/internal/errors"
	"ouvipanel/internal/exporter"
)

// DashboardHandler handles the dashboard data requests.
type DashboardHandler struct {
	service        DashboardServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	defaultUndated bool
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, defaultUndated bool) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "dashboard_handler")),
		errorHandler:   errorHandler,
		defaultUndated: defaultUndated,
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/periods", h.GetPeriods)
	r.Get("/summary", h.GetSummary)

	r.Route("/datasets/{dataset}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/counts/{field}", h.GetCounts)
		r.Get("/export/{field}", h.ExportCounts)
		r.Post("/reload", h.Reload)
	})

	return r
}

// DatasetCtx validates the dataset parameter.
func (h *DashboardHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "dataset") == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("dataset", "Dataset name is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetPeriods returns the selectable periods and per-dataset load status.
func (h *DashboardHandler) GetPeriods(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Periods(r.Context()))
}

// GetSummary returns per-dataset totals for the selected window.
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sel, err := h.selection(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, h.service.Summary(r.Context(), sel))
}

// GetCounts returns the aggregated count table for one category field.
func (h *DashboardHandler) GetCounts(w http.ResponseWriter, r *http.Request) {
	sel, err := h.selection(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.CategoryCounts(r.Context(),
		chi.URLParam(r, "dataset"), chi.URLParam(r, "field"), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

// ExportCounts downloads the count table as a semicolon CSV with a UTF-8
// BOM, the shape the office's spreadsheet tooling expects.
func (h *DashboardHandler) ExportCounts(w http.ResponseWriter, r *http.Request) {
	sel, err := h.selection(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	datasetName := chi.URLParam(r, "dataset")
	resp, err := h.service.CategoryCounts(r.Context(), datasetName, chi.URLParam(r, "field"), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows := make([]exporter.CountRow, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		rows = append(rows, exporter.CountRow{Value: row.Value, Count: row.Count})
	}
	data, err := exporter.CountsCSV(rows)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("%s_%s.csv", datasetName, sanitizeFilename(resp.Column))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write CSV export",
			slog.String("dataset", datasetName),
			slog.String("error", err.Error()))
	}
}

// Reload drops the cached snapshot of one dataset so the next render
// re-parses the file. Used after a new export replaces the old one.
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "dataset")
	if !h.service.Invalidate(name) {
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
		return
	}
	h.logger.InfoContext(r.Context(), "dataset cache invalidated", slog.String("dataset", name))
	render.JSON(w, r, map[string]string{"status": "reloaded", "dataset": name})
}

// selection builds the per-request period selection. A request without a
// periods parameter means "everything available" (the filter controls have
// not been touched); an explicitly empty periods parameter means the user
// deselected every period, which is a valid nothing-selected state.
func (h *DashboardHandler) selection(r *http.Request) (dataset.Selection, error) {
	q := r.URL.Query()

	undated := h.defaultUndated
	if v := q.Get("undated"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return dataset.Selection{}, apierrors.ErrValidation("undated", "must be true or false")
		}
		undated = parsed
	}

	raw, present := q["periods"]
	if !present {
		keys := make([]dataset.PeriodKey, 0)
		for _, p := range h.service.Periods(r.Context()).Periods {
			key, err := dataset.ParsePeriodKey(p.Key)
			if err != nil {
				continue
			}
			keys = append(keys, key)
		}
		return dataset.NewSelection(keys, undated), nil
	}

	var keys []dataset.PeriodKey
	for _, chunk := range raw {
		for _, part := range strings.Split(chunk, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			key, err := dataset.ParsePeriodKey(part)
			if err != nil {
				return dataset.Selection{}, apierrors.ErrValidation("periods", err.Error())
			}
			keys = append(keys, key)
		}
	}
	return dataset.NewSelection(keys, undated), nil
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-' || r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, s)
}
