package errors

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"ouvipanel/internal/dataset"
)

// ErrorHandler provides centralized error handling for HTTP responses.
// It maps the ingestion taxonomy onto structured API errors so the frontend
// can show distinct guidance per failure mode.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// HandleError converts any error to a structured API error and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	// trace_id reaches the record through the context-aware log handler.
	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	render.Render(w, r, h.toAPIError(err))
}

// toAPIError maps domain errors onto API errors. Unknown errors become an
// opaque 500; the detail stays in the server log only.
func (h *ErrorHandler) toAPIError(err error) *APIError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return New(http.StatusGatewayTimeout, "TIMEOUT", "The request took too long to process")
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var notFound *dataset.SourceNotFoundError
	if errors.As(err, &notFound) {
		return DatasetUnavailableError(notFound.Name, err)
	}

	var unreadable *dataset.UnreadableSourceError
	if errors.As(err, &unreadable) {
		return DatasetUnavailableError(unreadable.Name, err)
	}

	var columnNotFound *dataset.ColumnNotFoundError
	if errors.As(err, &columnNotFound) {
		return NewWithDetails(http.StatusUnprocessableEntity, "COLUMN_NOT_FOUND",
			columnNotFound.Error(), map[string]interface{}{
				"field":             columnNotFound.Field,
				"tried_aliases":     columnNotFound.Aliases,
				"available_columns": columnNotFound.Available,
			})
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrTypeNotFound:
			return NewWithDetails(http.StatusNotFound, "NOT_FOUND", appErr.Message, appErr.Context)
		case ErrTypeValidation:
			return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", appErr.Message, appErr.Context)
		default:
			return NewWithDetails(http.StatusInternalServerError, string(appErr.Type), appErr.Message, appErr.Context)
		}
	}

	return ErrInternalServer
}
