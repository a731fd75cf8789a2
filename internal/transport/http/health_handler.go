package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HealthHandler reports process liveness and per-dataset load status.
type HealthHandler struct {
	service DashboardServiceInterface
	version string
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(service DashboardServiceInterface, version string) *HealthHandler {
	return &HealthHandler{
		service: service,
		version: version,
		started: time.Now(),
	}
}

// Routes returns the health routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetHealth)
	return r
}

// GetHealth returns liveness plus the load status of every configured
// dataset. A dataset failing to load degrades the report, not the process.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	periods := h.service.Periods(r.Context())

	status := "ok"
	for _, ds := range periods.Datasets {
		if !ds.Loaded {
			status = "degraded"
			break
		}
	}

	render.JSON(w, r, map[string]interface{}{
		"status":   status,
		"version":  h.version,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"datasets": periods.Datasets,
	})
}
