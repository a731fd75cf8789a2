package services

import (
	"context"
	"log/slog"
	"sort"
	"strconv"

	"ouvipanel/internal/config"
	"ouvipanel/internal/dataset"
	apierrors "ouvipanel/internal/errors"
	"ouvipanel/internal/infrastructure"
)

// DashboardService loads the configured dataset snapshots through the
// process-wide cache and answers the render queries of one interaction
// cycle. One failing dataset never blocks the others: its failure text is
// carried in the response for that dataset alone.
type DashboardService struct {
	cfg     *config.Config
	cache   *dataset.Cache
	logger  *slog.Logger
	metrics *infrastructure.Metrics
	months  dataset.MonthNames
}

// NewDashboardService creates the service. Metrics may be nil (cmd/inspect
// runs without an HTTP surface).
func NewDashboardService(cfg *config.Config, logger *slog.Logger, metrics *infrastructure.Metrics) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		cfg:     cfg,
		cache:   dataset.NewCache(dataset.NewLoader(logger)),
		logger:  logger.With(slog.String("component", "dashboard_service")),
		metrics: metrics,
		months:  dataset.PortugueseMonths,
	}
}

// DatasetStatus reports how one dataset came out of its load.
type DatasetStatus struct {
	Loaded            bool     `json:"loaded"`
	Error             string   `json:"error,omitempty"`
	Records           int      `json:"records"`
	Undated           int      `json:"undated"`
	DateColumnMissing bool     `json:"date_column_missing"`
	MissingFields     []string `json:"missing_fields,omitempty"`
}

// PeriodInfo is one selectable period: the wire key plus the display label
// built from the explicit month table.
type PeriodInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// PeriodsResponse drives the time filter controls.
type PeriodsResponse struct {
	Periods        []PeriodInfo             `json:"periods"`
	IncludeUndated bool                     `json:"include_undated_default"`
	Datasets       map[string]DatasetStatus `json:"datasets"`
}

// loadAll fetches every configured source through the cache. Load failures
// land in the status map instead of aborting: the other dataset may still
// render.
func (s *DashboardService) loadAll(ctx context.Context) (map[string]*dataset.NormalizedRecordSet, map[string]DatasetStatus) {
	sets := make(map[string]*dataset.NormalizedRecordSet)
	statuses := make(map[string]DatasetStatus)

	for _, src := range s.cfg.Datasets.Sources {
		set, err := s.cache.Get(ctx, src)
		if err != nil {
			s.logger.WarnContext(ctx, "dataset load failed",
				slog.String("dataset", src.Name),
				slog.String("error", err.Error()))
			s.countLoad(src.Name, "error")
			statuses[src.Name] = DatasetStatus{Error: err.Error()}
			continue
		}
		s.countLoad(src.Name, "ok")
		s.recordGauges(set)

		sets[src.Name] = set
		statuses[src.Name] = DatasetStatus{
			Loaded:            true,
			Records:           set.Len(),
			Undated:           set.UndatedCount(),
			DateColumnMissing: set.DateColumnMissing,
			MissingFields:     sortedKeys(set.MissingFields),
		}
	}
	return sets, statuses
}

// Periods returns the merged descending period list across every loadable
// dataset, with display labels. The set of keys is exactly the distinct
// non-absent periods present in at least one loaded record.
func (s *DashboardService) Periods(ctx context.Context) *PeriodsResponse {
	sets, statuses := s.loadAll(ctx)

	all := make([]*dataset.NormalizedRecordSet, 0, len(sets))
	for _, set := range sets {
		all = append(all, set)
	}

	keys := dataset.AvailablePeriods(all...)
	periods := make([]PeriodInfo, 0, len(keys))
	for _, k := range keys {
		periods = append(periods, PeriodInfo{Key: k.String(), Label: k.Label(s.months)})
	}

	return &PeriodsResponse{
		Periods:        periods,
		IncludeUndated: s.cfg.Datasets.IncludeUndatedDefault,
		Datasets:       statuses,
	}
}

// DatasetSummary is the filtered headline for one dataset.
type DatasetSummary struct {
	Status       dataset.FilterStatus `json:"status"`
	Total        int                  `json:"total"`
	Undated      int                  `json:"undated"`
	DroppedDates int                  `json:"dropped_dates"`
	Error        string               `json:"error,omitempty"`
}

// SummaryResponse carries per-dataset totals for the selected window.
type SummaryResponse struct {
	Datasets map[string]DatasetSummary `json:"datasets"`
}

// Summary applies the selection to every dataset and returns the counts.
// Undated rows excluded by coercion are reported in aggregate only, as the
// dropped_dates figure.
func (s *DashboardService) Summary(ctx context.Context, sel dataset.Selection) *SummaryResponse {
	sets, statuses := s.loadAll(ctx)

	out := &SummaryResponse{Datasets: make(map[string]DatasetSummary, len(statuses))}
	for name, status := range statuses {
		if !status.Loaded {
			out.Datasets[name] = DatasetSummary{Error: status.Error}
			continue
		}
		filtered, filterStatus := dataset.Apply(sets[name], sel)
		out.Datasets[name] = DatasetSummary{
			Status:       filterStatus,
			Total:        filtered.Len(),
			Undated:      filtered.UndatedCount(),
			DroppedDates: sets[name].DroppedDates,
		}
		s.countRender("summary", string(filterStatus))
	}
	return out
}

// CountRow is one aggregated category value.
type CountRow struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CountsResponse is the pre-aggregated table behind one bar/pie chart.
type CountsResponse struct {
	Dataset string               `json:"dataset"`
	Column  string               `json:"column"`
	Status  dataset.FilterStatus `json:"status"`
	Rows    []CountRow           `json:"rows"`
	Total   int                  `json:"total"`
}

// CategoryCounts builds the value-count table for one category field of one
// dataset under the current selection. The field is resolved through the
// source's alias specs; a column missing from the loaded file fails here,
// locally, naming the column, rather than at load time.
func (s *DashboardService) CategoryCounts(ctx context.Context, datasetName, field string, sel dataset.Selection) (*CountsResponse, error) {
	src, ok := s.cfg.Source(datasetName)
	if !ok {
		return nil, apierrors.ErrDatasetNotFound
	}

	set, err := s.cache.Get(ctx, src)
	if err != nil {
		return nil, err
	}

	column, err := s.resolveField(src, set, field)
	if err != nil {
		return nil, err
	}

	filtered, filterStatus := dataset.Apply(set, sel)
	s.countRender("counts", string(filterStatus))

	counts := make(map[string]int)
	for _, rec := range filtered.Records {
		if v, present := rec.Cell(column); present && v != "" {
			counts[v]++
		}
	}

	rows := make([]CountRow, 0, len(counts))
	total := 0
	for value, count := range counts {
		rows = append(rows, CountRow{Value: value, Count: count})
		total += count
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Value < rows[j].Value
	})

	return &CountsResponse{
		Dataset: datasetName,
		Column:  column,
		Status:  filterStatus,
		Rows:    rows,
		Total:   total,
	}, nil
}

// resolveField maps a semantic field name onto the actual column of the
// loaded set, going through the source's alias specs. Alias resolution
// lives here and in the resolver only; callers always address columns by
// field name and receive the resolved name back in the response.
func (s *DashboardService) resolveField(src dataset.Source, set *dataset.NormalizedRecordSet, field string) (string, error) {
	for _, spec := range append(src.Required, cleanFieldSpecs(src)...) {
		if spec.Field != field {
			continue
		}
		column, err := dataset.Resolve(set.Columns, spec)
		if err != nil {
			return "", apierrors.ColumnMissingError(src.Name, spec.Aliases[0], set.Columns)
		}
		return column, nil
	}

	// Fields not declared in configuration may still be addressed by their
	// exact column name; drifted headers then surface the available list.
	if set.HasColumn(field) {
		return field, nil
	}
	return "", apierrors.ColumnMissingError(src.Name, field, set.Columns)
}

func cleanFieldSpecs(src dataset.Source) []dataset.AliasSpec {
	specs := make([]dataset.AliasSpec, 0, len(src.Clean))
	for _, c := range src.Clean {
		specs = append(specs, c.Field)
	}
	return specs
}

// Invalidate drops the cached load of one dataset, used when a new snapshot
// file replaces the old one.
func (s *DashboardService) Invalidate(datasetName string) bool {
	src, ok := s.cfg.Source(datasetName)
	if !ok {
		return false
	}
	s.cache.Invalidate(src)
	return true
}

func (s *DashboardService) countLoad(name, outcome string) {
	if s.metrics != nil {
		s.metrics.DatasetLoads.WithLabelValues(name, outcome).Inc()
	}
}

func (s *DashboardService) recordGauges(set *dataset.NormalizedRecordSet) {
	if s.metrics == nil {
		return
	}
	undated := set.UndatedCount()
	s.metrics.DatasetRecords.WithLabelValues(set.Name, strconv.FormatBool(true)).Set(float64(set.Len() - undated))
	s.metrics.DatasetRecords.WithLabelValues(set.Name, strconv.FormatBool(false)).Set(float64(undated))
}

func (s *DashboardService) countRender(endpoint, status string) {
	if s.metrics != nil {
		s.metrics.RenderRequests.WithLabelValues(endpoint, status).Inc()
	}
}

func sortedKeys(m map[string][]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
