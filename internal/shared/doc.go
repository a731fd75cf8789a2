// Package shared holds utilities used across packages that belong to no
// specific layer. Currently that is the testutil subpackage with the slog
// capture handler the ingestion tests use to assert on warnings.
//
// Keep this package free of business logic and of dependencies on other
// internal packages; it sits below everything else.
package shared
