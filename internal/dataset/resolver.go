package dataset

import (
	"fmt"
	"strings"
)

// AliasSpec names one semantic field together with the ordered list of raw
// header spellings considered equivalent for it. Monthly exports drift in
// capitalization and spacing, so the list is open configuration rather than
// a hardcoded enumeration. Order defines preference: first match wins.
type AliasSpec struct {
	Field   string   `yaml:"field" json:"field"`
	Aliases []string `yaml:"aliases" json:"aliases"`
}

// ColumnNotFoundError reports that none of a field's aliases matched the
// columns actually present. It always carries the full available-column
// list: schema drift across export runs is the dominant failure mode here
// and the operator needs the real headers to diagnose it.
type ColumnNotFoundError struct {
	Field     string
	Aliases   []string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column for field %q not found: tried [%s], available [%s]",
		e.Field,
		strings.Join(e.Aliases, ", "),
		strings.Join(e.Available, ", "))
}

// Resolve returns the first alias of spec present among columns. Columns
// are expected to be normalized already (see NormalizeHeader); aliases are
// normalized here so configuration may carry them verbatim.
func Resolve(columns []string, spec AliasSpec) (string, error) {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}
	for _, alias := range spec.Aliases {
		a := NormalizeHeader(alias)
		if _, ok := present[a]; ok {
			return a, nil
		}
	}
	return "", &ColumnNotFoundError{
		Field:     spec.Field,
		Aliases:   spec.Aliases,
		Available: columns,
	}
}
