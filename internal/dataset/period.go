package dataset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// PeriodKey identifies a calendar year and month, with no day component.
// It is the grouping and filtering key shared by every loaded dataset.
// Two keys are equal iff they have the same year and month.
type PeriodKey struct {
	Year  int
	Month time.Month
}

// PeriodOf projects a date onto its year/month key.
func PeriodOf(d time.Time) PeriodKey {
	return PeriodKey{Year: d.Year(), Month: d.Month()}
}

// Before reports whether p is chronologically earlier than q.
func (p PeriodKey) Before(q PeriodKey) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}
	return p.Month < q.Month
}

// String returns the canonical wire form, e.g. "2024-03".
func (p PeriodKey) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// ParsePeriodKey parses the canonical "YYYY-MM" wire form.
func ParsePeriodKey(s string) (PeriodKey, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return PeriodKey{}, fmt.Errorf("invalid period key %q: want YYYY-MM", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return PeriodKey{}, fmt.Errorf("invalid period year in %q: %w", s, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return PeriodKey{}, fmt.Errorf("invalid period month in %q: %w", s, err)
	}
	if month < 1 || month > 12 {
		return PeriodKey{}, fmt.Errorf("invalid period month in %q: %d out of range", s, month)
	}
	return PeriodKey{Year: year, Month: time.Month(month)}, nil
}

// MonthNames is an explicit month-name lookup table, indexed by
// time.Month-1. Display naming is configuration, never process locale state.
type MonthNames [12]string

// PortugueseMonths is the default display table for the ouvidoria frontend.
var PortugueseMonths = MonthNames{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// Label renders the key for display, e.g. "março/2024".
func (p PeriodKey) Label(names MonthNames) string {
	return fmt.Sprintf("%s/%d", names[p.Month-1], p.Year)
}

// noDateTokens are the placeholder values exports use for an unknown date.
// Matched case-insensitively after trimming.
var noDateTokens = map[string]struct{}{
	"":         {},
	"null":     {},
	"nan":      {},
	"sem data": {},
	"--":       {},
	".":        {},
	"..":       {},
}

// dayFirstLayouts are tried in order when the source uses the day-first
// convention. ISO forms are always accepted since spreadsheet round-trips
// produce them regardless of locale.
var dayFirstLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2/1/2006",
	"02/01/06",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var monthFirstLayouts = []string{
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"01-02-2006",
	"1/2/2006",
	"01/02/06",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// CoerceDate parses a raw cell value as a calendar date. Blank values,
// recognized placeholder tokens and strings that fail to parse under the
// requested convention all yield ok=false; coercion never fails the load.
func CoerceDate(raw string, dayFirst bool) (time.Time, bool) {
	v := strings.TrimSpace(raw)
	if _, skip := noDateTokens[strings.ToLower(v)]; skip {
		return time.Time{}, false
	}

	layouts := monthFirstLayouts
	if dayFirst {
		layouts = dayFirstLayouts
	}
	for _, layout := range layouts {
		if d, err := time.Parse(layout, v); err == nil {
			return d, true
		}
	}

	// Spreadsheet cells sometimes surface as raw serial numbers when the
	// sheet lost its date formatting.
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		if d, ok := fromExcelSerial(serial); ok {
			return d, true
		}
	}

	return time.Time{}, false
}

// excelEpoch is day zero of the 1900 date system, already offset for the
// Lotus leap-year bug.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

func fromExcelSerial(serial float64) (time.Time, bool) {
	// 61 = 1900-03-01, past the phantom 1900-02-29; ~80 years of headroom.
	if serial < 61 || serial > 80000 {
		return time.Time{}, false
	}
	return excelEpoch.AddDate(0, 0, int(serial)), true
}

// sortPeriodsDescending orders keys most-recent first on (year, month).
// Sorting display labels would mis-order month names; callers must never
// sort the string form.
func sortPeriodsDescending(keys []PeriodKey) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[j].Before(keys[i])
	})
}
