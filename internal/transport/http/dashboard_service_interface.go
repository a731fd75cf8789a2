package http

import (
	"context"

	"ouvipanel/internal/dataset"
	"ouvipanel/internal/services"
)

// DashboardServiceInterface is the service surface the handlers need.
// Defined here so handler tests can substitute the service.
type DashboardServiceInterface interface {
	Periods(ctx context.Context) *services.PeriodsResponse
	Summary(ctx context.Context, sel dataset.Selection) *services.SummaryResponse
	CategoryCounts(ctx context.Context, datasetName, field string, sel dataset.Selection) (*services.CountsResponse, error)
	Invalidate(datasetName string) bool
}
