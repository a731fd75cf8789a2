package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceDatePlaceholders(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "single space", raw: " "},
		{name: "null token", raw: "null"},
		{name: "null token upper", raw: "NULL"},
		{name: "nan token", raw: "NaN"},
		{name: "sem data", raw: "sem data"},
		{name: "sem data padded", raw: "  Sem Data  "},
		{name: "double dash", raw: "--"},
		{name: "dot", raw: "."},
		{name: "double dot", raw: ".."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := CoerceDate(tt.raw, true)
			assert.False(t, ok, "placeholder %q must coerce to absent", tt.raw)
		})
	}
}

func TestCoerceDateDayFirst(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		dayFirst bool
		wantOK   bool
		want     time.Time
	}{
		{
			name:     "day first slash",
			raw:      "05/03/2024",
			dayFirst: true,
			wantOK:   true,
			want:     time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "month first slash",
			raw:      "05/03/2024",
			dayFirst: false,
			wantOK:   true,
			want:     time.Date(2024, time.May, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "day first with time",
			raw:      "31/12/2023 14:30:00",
			dayFirst: true,
			wantOK:   true,
			want:     time.Date(2023, time.December, 31, 14, 30, 0, 0, time.UTC),
		},
		{
			name:     "iso always accepted",
			raw:      "2024-03-05",
			dayFirst: true,
			wantOK:   true,
			want:     time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "day out of range under day-first",
			raw:      "13/25/2024",
			dayFirst: true,
			wantOK:   false,
		},
		{
			name:     "free text",
			raw:      "aguardando resposta",
			dayFirst: true,
			wantOK:   false,
		},
		{
			name:     "excel serial",
			raw:      "45356",
			dayFirst: true,
			wantOK:   true,
			want:     time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceDate(tt.raw, tt.dayFirst)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCoerceDateDeterministic(t *testing.T) {
	first, ok1 := CoerceDate("05/03/2024", true)
	second, ok2 := CoerceDate("05/03/2024", true)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, PeriodOf(first), PeriodOf(second))
	assert.Equal(t, PeriodKey{Year: 2024, Month: time.March}, PeriodOf(first))
}

func TestPeriodKeyOrdering(t *testing.T) {
	dec23 := PeriodKey{Year: 2023, Month: time.December}
	jan24 := PeriodKey{Year: 2024, Month: time.January}

	assert.True(t, dec23.Before(jan24))
	assert.False(t, jan24.Before(dec23))

	// String-sorting the display labels would put "dezembro/2023" before
	// "janeiro/2024"; calendar order must win.
	keys := []PeriodKey{dec23, jan24}
	sortPeriodsDescending(keys)
	assert.Equal(t, []PeriodKey{jan24, dec23}, keys)
}

func TestPeriodKeyRoundTrip(t *testing.T) {
	p := PeriodKey{Year: 2024, Month: time.March}
	assert.Equal(t, "2024-03", p.String())

	parsed, err := ParsePeriodKey("2024-03")
	require.NoError(t, err)
	assert.Equal(t, p, parsed)

	_, err = ParsePeriodKey("2024")
	assert.Error(t, err)
	_, err = ParsePeriodKey("2024-13")
	assert.Error(t, err)
	_, err = ParsePeriodKey("março/2024")
	assert.Error(t, err)
}

func TestPeriodKeyLabel(t *testing.T) {
	p := PeriodKey{Year: 2024, Month: time.March}
	assert.Equal(t, "março/2024", p.Label(PortugueseMonths))
}
