package dataset

// Selection is the user's time-window choice: a set of period keys plus an
// explicit opt-in for records with no derivable period. It is rebuilt on
// every interaction and owned by the request, never by the dataset.
type Selection struct {
	Periods        map[PeriodKey]struct{}
	IncludeUndated bool
}

// NewSelection builds a selection from period keys.
func NewSelection(periods []PeriodKey, includeUndated bool) Selection {
	sel := Selection{
		Periods:        make(map[PeriodKey]struct{}, len(periods)),
		IncludeUndated: includeUndated,
	}
	for _, p := range periods {
		sel.Periods[p] = struct{}{}
	}
	return sel
}

// Empty reports whether the selection matches nothing at all.
func (s Selection) Empty() bool {
	return len(s.Periods) == 0 && !s.IncludeUndated
}

// FilterStatus distinguishes why a filtered set has the size it has, so
// presentation can show the right guidance text.
type FilterStatus string

const (
	// StatusOK: a real selection was applied.
	StatusOK FilterStatus = "ok"
	// StatusNoData: the source itself had zero rows.
	StatusNoData FilterStatus = "no_data"
	// StatusNothingSelected: the user deselected every period and opted out
	// of undated records. The empty result is intentional, not missing data.
	StatusNothingSelected FilterStatus = "nothing_selected"
)

// AvailablePeriods returns the union of non-absent period keys across the
// given sets, deduplicated and sorted descending by (year, month). The
// display string is never the sort key.
func AvailablePeriods(sets ...*NormalizedRecordSet) []PeriodKey {
	seen := make(map[PeriodKey]struct{})
	for _, set := range sets {
		if set == nil {
			continue
		}
		for _, r := range set.Records {
			if r.Dated {
				seen[r.Period] = struct{}{}
			}
		}
	}
	keys := make([]PeriodKey, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sortPeriodsDescending(keys)
	return keys
}

// Apply filters a set down to the selection: a record is kept iff its
// period is selected, or it is undated and undated records are opted in.
// Non-destructive: the input set is left intact, so a later selection can
// restore rows excluded now.
func Apply(set *NormalizedRecordSet, sel Selection) (*NormalizedRecordSet, FilterStatus) {
	out := &NormalizedRecordSet{
		Name:              set.Name,
		Columns:           set.Columns,
		DateColumn:        set.DateColumn,
		DateColumnMissing: set.DateColumnMissing,
		MissingFields:     set.MissingFields,
		DroppedDates:      set.DroppedDates,
	}

	if len(set.Records) == 0 {
		return out, StatusNoData
	}
	if sel.Empty() {
		return out, StatusNothingSelected
	}

	for _, r := range set.Records {
		if r.Dated {
			if _, ok := sel.Periods[r.Period]; ok {
				out.Records = append(out.Records, r)
			}
		} else if sel.IncludeUndated {
			out.Records = append(out.Records, r)
		}
	}
	return out, StatusOK
}
