package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ouvipanel/internal/dataset"
	apierrors "ouvipanel/internal/errors"
	"ouvipanel/internal/services"
)

// stubService records the selection it received and returns canned data.
type stubService struct {
	periods      *services.PeriodsResponse
	lastSel      dataset.Selection
	countsErr    error
	counts       *services.CountsResponse
	invalidated  []string
	knownDataset string
}

func (s *stubService) Periods(ctx context.Context) *services.PeriodsResponse {
	return s.periods
}

func (s *stubService) Summary(ctx context.Context, sel dataset.Selection) *services.SummaryResponse {
	s.lastSel = sel
	return &services.SummaryResponse{Datasets: map[string]services.DatasetSummary{
		"pesquisa": {Status: dataset.StatusOK, Total: 2},
	}}
}

func (s *stubService) CategoryCounts(ctx context.Context, datasetName, field string, sel dataset.Selection) (*services.CountsResponse, error) {
	s.lastSel = sel
	if s.countsErr != nil {
		return nil, s.countsErr
	}
	return s.counts, nil
}

func (s *stubService) Invalidate(name string) bool {
	s.invalidated = append(s.invalidated, name)
	return name == s.knownDataset
}

func newStub() *stubService {
	return &stubService{
		periods: &services.PeriodsResponse{
			Periods: []services.PeriodInfo{
				{Key: "2024-03", Label: "março/2024"},
				{Key: "2024-01", Label: "janeiro/2024"},
			},
			Datasets: map[string]services.DatasetStatus{
				"pesquisa": {Loaded: true, Records: 4},
			},
		},
		counts: &services.CountsResponse{
			Dataset: "pesquisa",
			Column:  "Área",
			Status:  dataset.StatusOK,
			Rows:    []services.CountRow{{Value: "GGALI", Count: 2}},
			Total:   2,
		},
		knownDataset: "pesquisa",
	}
}

func newTestHandler(stub *stubService) *DashboardHandler {
	return NewDashboardHandler(stub, nil, apierrors.NewErrorHandler(nil), false)
}

func doRequest(t *testing.T, h *DashboardHandler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(method, target, nil)
	h.Routes().ServeHTTP(w, r)
	return w
}

func TestGetPeriods(t *testing.T) {
	w := doRequest(t, newTestHandler(newStub()), http.MethodGet, "/periods")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	periods := body["periods"].([]interface{})
	require.Len(t, periods, 2)
	first := periods[0].(map[string]interface{})
	assert.Equal(t, "2024-03", first["key"])
	assert.Equal(t, "março/2024", first["label"])
}

func TestGetSummarySelectionParsing(t *testing.T) {
	march := dataset.PeriodKey{Year: 2024, Month: time.March}
	jan := dataset.PeriodKey{Year: 2024, Month: time.January}

	t.Run("explicit periods", func(t *testing.T) {
		stub := newStub()
		w := doRequest(t, newTestHandler(stub), http.MethodGet, "/summary?periods=2024-03&undated=true")
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, stub.lastSel.IncludeUndated)
		_, hasMarch := stub.lastSel.Periods[march]
		assert.True(t, hasMarch)
		assert.Len(t, stub.lastSel.Periods, 1)
	})

	t.Run("comma separated", func(t *testing.T) {
		stub := newStub()
		w := doRequest(t, newTestHandler(stub), http.MethodGet, "/summary?periods=2024-03,2024-01")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, stub.lastSel.Periods, 2)
		_, hasJan := stub.lastSel.Periods[jan]
		assert.True(t, hasJan)
	})

	t.Run("absent parameter selects everything", func(t *testing.T) {
		stub := newStub()
		w := doRequest(t, newTestHandler(stub), http.MethodGet, "/summary")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, stub.lastSel.Periods, 2, "defaults to all available periods")
		assert.False(t, stub.lastSel.IncludeUndated, "undated stays opt-in")
	})

	t.Run("empty parameter means nothing selected", func(t *testing.T) {
		stub := newStub()
		w := doRequest(t, newTestHandler(stub), http.MethodGet, "/summary?periods=")
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, stub.lastSel.Empty())
	})

	t.Run("malformed period", func(t *testing.T) {
		stub := newStub()
		w := doRequest(t, newTestHandler(stub), http.MethodGet, "/summary?periods=marco/2024")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed undated flag", func(t *testing.T) {
		stub := newStub()
		w := doRequest(t, newTestHandler(stub), http.MethodGet, "/summary?undated=maybe")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetCounts(t *testing.T) {
	stub := newStub()
	w := doRequest(t, newTestHandler(stub), http.MethodGet, "/datasets/pesquisa/counts/area?periods=2024-03")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Área", body["column"])
	rows := body["rows"].([]interface{})
	require.Len(t, rows, 1)
}

func TestGetCountsColumnMissing(t *testing.T) {
	stub := newStub()
	stub.countsErr = apierrors.ColumnMissingError("pesquisa", "Área", []string{"Tipo"})
	w := doRequest(t, newTestHandler(stub), http.MethodGet, "/datasets/pesquisa/counts/area")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "COLUMN_NOT_FOUND", body["error_code"])
}

func TestExportCounts(t *testing.T) {
	stub := newStub()
	w := doRequest(t, newTestHandler(stub), http.MethodGet, "/datasets/pesquisa/export/area?periods=2024-03")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, strings.HasPrefix(w.Body.String(), "\xEF\xBB\xBF"), "BOM prefix")
	assert.Contains(t, w.Body.String(), "GGALI;2")
}

func TestReload(t *testing.T) {
	t.Run("known dataset", func(t *testing.T) {
		stub := newStub()
		w := doRequest(t, newTestHandler(stub), http.MethodPost, "/datasets/pesquisa/reload")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"pesquisa"}, stub.invalidated)
	})

	t.Run("unknown dataset", func(t *testing.T) {
		stub := newStub()
		w := doRequest(t, newTestHandler(stub), http.MethodPost, "/datasets/outro/reload")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHealthDegradedOnFailedDataset(t *testing.T) {
	stub := newStub()
	stub.periods.Datasets["demandas"] = services.DatasetStatus{Error: "source not found"}

	h := NewHealthHandler(stub, "test")
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
}
