// Package dataset provides the ingestion and normalization pipeline for the
// ouvidoria dashboard. It turns semi-structured delimited or spreadsheet
// exports with unstable encodings, header spellings and date formats into
// normalized record sets keyed by a canonical year/month period.
//
// # Architecture
//
// The package is organized around a small pipeline:
//
// 1. Resolver: maps an ordered list of acceptable header aliases onto the
// columns actually present in a file
// 2. Normalizer: strips BOM/zero-width artifacts from headers and known junk
// substrings from cell values
// 3. Period: coerces heterogeneous date values into time.Time under a
// day-first convention and projects them onto PeriodKey (year, month)
// 4. Loader: composes the above to load one configured source file
// 5. Cache: process-wide, immutable-once-computed load cache
// 6. Filter: period selection applied over normalized sets
//
// # Usage
//
// Loading a configured source:
//
//	loader := dataset.NewLoader(logger)
//	set, err := loader.Load(ctx, src)
//	if err != nil {
//	    // SourceNotFoundError / UnreadableSourceError
//	}
//
// Filtering:
//
//	periods := dataset.AvailablePeriods(survey, cases)
//	filtered, status := dataset.Apply(survey, selection)
package dataset
