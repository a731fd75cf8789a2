package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		want     string
	}{
		{
			name: "simple message",
			apiError: &APIError{
				StatusCode: http.StatusBadRequest,
				ErrorCode:  "INVALID_REQUEST",
				Message:    "Invalid request format",
			},
			want: "Invalid request format",
		},
		{
			name: "empty message",
			apiError: &APIError{
				StatusCode: http.StatusInternalServerError,
				ErrorCode:  "INTERNAL_ERROR",
				Message:    "",
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.apiError.Error())
		})
	}
}

func TestAPIError_Render(t *testing.T) {
	apiErr := DatasetUnavailableError("pesquisa", assertableError("file missing"))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/summary", nil)

	require.NoError(t, render.Render(w, r, apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "DATASET_UNAVAILABLE", body["error_code"])
	assert.Contains(t, body["message"], "pesquisa")
	assert.Equal(t, "file missing", body["details"])
}

type assertableError string

func (e assertableError) Error() string { return string(e) }

func TestColumnMissingError(t *testing.T) {
	apiErr := ColumnMissingError("pesquisa", "Área", []string{"Tipo", "Satisfação"})
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "COLUMN_NOT_FOUND", apiErr.ErrorCode)
	assert.Contains(t, apiErr.Message, "Área")

	details, ok := apiErr.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []string{"Tipo", "Satisfação"}, details["available_columns"])
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := assertableError("boom")
	appErr := NewParsingError("could not parse row", cause)

	assert.Contains(t, appErr.Error(), "PARSING")
	assert.Contains(t, appErr.Error(), "boom")
	assert.Equal(t, cause, appErr.Unwrap())

	appErr.WithContext("row", 7)
	assert.Equal(t, 7, appErr.Context["row"])
}
