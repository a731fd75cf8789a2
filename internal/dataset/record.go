package dataset

// Record is one row of a normalized set. Cells are keyed by normalized
// header name; a missing column simply has no key. Dated reports whether the
// designated date field held a coercible date, in which case Period carries
// the derived year/month key.
type Record struct {
	Cells  map[string]string
	Period PeriodKey
	Dated  bool
}

// Cell returns the value of a column, and whether the column was present.
func (r Record) Cell(column string) (string, bool) {
	v, ok := r.Cells[column]
	return v, ok
}

// NormalizedRecordSet is the output of one load: headers normalized, the
// date field coerced and projected onto PeriodKey per row. Sets are treated
// as immutable once built; filtering produces a new set sharing the same
// backing records.
type NormalizedRecordSet struct {
	// Name identifies the configured source (e.g. "pesquisa", "demandas").
	Name string

	// Columns holds the normalized header names in file order.
	Columns []string

	// Records holds every row of the source. Rows are never dropped during
	// normalization; undated rows stay with Dated=false.
	Records []Record

	// DateColumn is the resolved name of the date field, or "" when the
	// field could not be resolved (DateColumnMissing is then true and every
	// record is undated).
	DateColumn        string
	DateColumnMissing bool

	// MissingFields records required non-date fields that could not be
	// resolved, keyed by semantic field name with the attempted aliases.
	// Presence here is surfaced per chart at the point of use, not at load.
	MissingFields map[string][]string

	// DroppedDates counts rows whose date value was blank, a placeholder
	// token, or unparseable. Informational only.
	DroppedDates int
}

// Len returns the number of records in the set.
func (s *NormalizedRecordSet) Len() int {
	return len(s.Records)
}

// HasColumn reports whether a normalized column name is present.
func (s *NormalizedRecordSet) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Periods returns the distinct non-absent period keys of this set,
// sorted descending.
func (s *NormalizedRecordSet) Periods() []PeriodKey {
	return AvailablePeriods(s)
}

// UndatedCount returns the number of records without a derivable period.
func (s *NormalizedRecordSet) UndatedCount() int {
	n := 0
	for _, r := range s.Records {
		if !r.Dated {
			n++
		}
	}
	return n
}
