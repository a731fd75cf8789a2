package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// CleanSpec couples a field (addressed by its alias spec, like every other
// field) with the exact junk substrings to strip from its cells.
type CleanSpec struct {
	Field AliasSpec `yaml:"field" json:"field"`
	Junk  []string  `yaml:"junk" json:"junk"`
}

// Source configures one dataset load. Encoding candidates, delimiter and
// alias specs are data, not code: the same loader is instantiated once per
// source instead of duplicating near-identical load paths.
type Source struct {
	Name      string      `yaml:"name" json:"name"`
	Path      string      `yaml:"path" json:"path"`
	Encodings []string    `yaml:"encodings" json:"encodings"`
	Delimiter string      `yaml:"delimiter" json:"delimiter"`
	DayFirst  bool        `yaml:"day_first" json:"day_first"`
	DateField AliasSpec   `yaml:"date_field" json:"date_field"`
	Required  []AliasSpec `yaml:"required" json:"required"`
	Clean     []CleanSpec `yaml:"clean" json:"clean"`
}

// delimiterRune returns the configured delimiter, defaulting to semicolon,
// the separator every known export of these systems uses.
func (s Source) delimiterRune() rune {
	if s.Delimiter == "" {
		return ';'
	}
	r, _ := utf8.DecodeRuneInString(s.Delimiter)
	return r
}

// Loader turns one configured source file into a NormalizedRecordSet.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "dataset_loader"))}
}

// Load runs the full pipeline for one source: decode with the first working
// encoding candidate, normalize headers, resolve the date alias, coerce
// dates and derive the period key per row, then apply configured cell
// cleaning. A missing date column is not fatal: the set comes back with
// every record undated and DateColumnMissing set, so the caller can render
// without time filtering on that dataset alone.
func (l *Loader) Load(ctx context.Context, src Source) (*NormalizedRecordSet, error) {
	if _, err := os.Stat(src.Path); err != nil {
		if os.IsNotExist(err) {
			return nil, &SourceNotFoundError{Name: src.Name, Path: src.Path}
		}
		return nil, &UnreadableSourceError{Name: src.Name, Path: src.Path, Cause: err}
	}

	var (
		rows [][]string
		err  error
	)
	if isSpreadsheet(src.Path) {
		rows, err = l.readSpreadsheet(src)
	} else {
		rows, err = l.readDelimited(src)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &UnreadableSourceError{Name: src.Name, Path: src.Path, Cause: fmt.Errorf("file has no header row")}
	}

	columns := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		columns[i] = NormalizeHeader(h)
	}

	set := &NormalizedRecordSet{
		Name:          src.Name,
		Columns:       columns,
		MissingFields: map[string][]string{},
	}

	dateColumn, err := Resolve(columns, src.DateField)
	if err != nil {
		var cnf *ColumnNotFoundError
		if !errors.As(err, &cnf) {
			return nil, err
		}
		set.DateColumnMissing = true
		l.logger.Warn("date column not found, dataset will not be time-filterable",
			slog.String("source", src.Name),
			slog.Any("tried", cnf.Aliases),
			slog.Any("available", cnf.Available))
	}
	set.DateColumn = dateColumn

	// Non-date required fields fail late, per chart, at the point of use.
	// Record the miss here so presentation can name the column.
	for _, spec := range src.Required {
		if _, err := Resolve(columns, spec); err != nil {
			set.MissingFields[spec.Field] = spec.Aliases
			l.logger.Warn("required column not found, charts using it will degrade",
				slog.String("source", src.Name),
				slog.String("field", spec.Field))
		}
	}

	cleanByColumn := l.resolveCleaning(src, columns)

	for _, row := range rows[1:] {
		cells := make(map[string]string, len(columns))
		for i, col := range columns {
			if col == "" || i >= len(row) {
				continue
			}
			cells[col] = row[i]
		}
		for col, junk := range cleanByColumn {
			if v, ok := cells[col]; ok {
				cells[col] = CleanCell(v, junk)
			}
		}

		// DroppedDates counts rows whose date cell existed but did not
		// coerce. A missing date column leaves it at zero: those rows are
		// undated wholesale, not individually dropped.
		rec := Record{Cells: cells}
		if dateColumn != "" {
			if d, ok := CoerceDate(cells[dateColumn], src.DayFirst); ok {
				rec.Period = PeriodOf(d)
				rec.Dated = true
			} else {
				set.DroppedDates++
			}
		}
		set.Records = append(set.Records, rec)
	}

	l.logger.Info("dataset loaded",
		slog.String("source", src.Name),
		slog.String("path", src.Path),
		slog.Int("records", len(set.Records)),
		slog.Int("undated", set.UndatedCount()),
		slog.Bool("date_column_missing", set.DateColumnMissing))

	return set, nil
}

// resolveCleaning maps each configured CleanSpec onto a resolved column.
// An unresolvable clean target is skipped: those are presentation columns
// and their absence is reported at the point of use.
func (l *Loader) resolveCleaning(src Source, columns []string) map[string][]string {
	out := make(map[string][]string, len(src.Clean))
	for _, c := range src.Clean {
		col, err := Resolve(columns, c.Field)
		if err != nil {
			continue
		}
		out[col] = c.Junk
	}
	return out
}

// readDelimited decodes the file under each encoding candidate in order and
// parses it as delimiter-separated rows. A candidate is rejected when it
// yields invalid UTF-8 or rows the CSV reader cannot parse.
func (l *Loader) readDelimited(src Source) ([][]string, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, &UnreadableSourceError{Name: src.Name, Path: src.Path, Cause: err}
	}

	candidates := src.Encodings
	if len(candidates) == 0 {
		candidates = []string{"utf-8", "latin-1"}
	}

	var lastErr error
	for _, name := range candidates {
		enc, err := encodingByName(name)
		if err != nil {
			lastErr = err
			continue
		}
		decoded := data
		if enc != nil {
			decoded, _, err = transform.Bytes(enc.NewDecoder(), data)
			if err != nil {
				lastErr = fmt.Errorf("decoding as %s: %w", name, err)
				continue
			}
		}
		if !utf8.Valid(decoded) {
			lastErr = fmt.Errorf("decoding as %s: result is not valid UTF-8", name)
			continue
		}

		reader := csv.NewReader(bytes.NewReader(decoded))
		reader.Comma = src.delimiterRune()
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			lastErr = fmt.Errorf("parsing as %s-decoded CSV: %w", name, err)
			continue
		}
		l.logger.Debug("delimited source decoded",
			slog.String("source", src.Name),
			slog.String("encoding", name),
			slog.Int("rows", len(rows)))
		return rows, nil
	}

	return nil, &UnreadableSourceError{Name: src.Name, Path: src.Path, Tried: candidates, Cause: lastErr}
}

// readSpreadsheet reads the first sheet of a spreadsheet container. Both
// container and delimited text are interchangeable sources for the same
// logical dataset, so both funnel into the same [][]string shape.
func (l *Loader) readSpreadsheet(src Source) ([][]string, error) {
	f, err := excelize.OpenFile(src.Path)
	if err != nil {
		return nil, &UnreadableSourceError{Name: src.Name, Path: src.Path, Cause: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &UnreadableSourceError{Name: src.Name, Path: src.Path, Cause: fmt.Errorf("workbook has no sheets")}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &UnreadableSourceError{Name: src.Name, Path: src.Path, Cause: err}
	}
	l.logger.Debug("spreadsheet source read",
		slog.String("source", src.Name),
		slog.String("sheet", sheets[0]),
		slog.Int("rows", len(rows)))
	return rows, nil
}

func isSpreadsheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return true
	}
	return false
}

// encodingByName maps a configured candidate name onto a decoder. A nil
// return with nil error means the bytes are already UTF-8.
func encodingByName(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8", "":
		return nil, nil
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "windows-1250", "cp1250":
		return charmap.Windows1250, nil
	default:
		return nil, fmt.Errorf("unknown encoding candidate %q", name)
	}
}
