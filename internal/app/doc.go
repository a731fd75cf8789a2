// Package app wires the ouvipanel application together: configuration,
// logging, metrics, the dashboard service and the HTTP server with its
// middleware chain.
//
// The lifecycle is NewApplication -> Run, where Run starts the listener,
// warms the dataset cache in the background and blocks until SIGINT or
// SIGTERM, then shuts down gracefully within the configured timeout.
//
// Route layout:
//
//	/api/health                                liveness plus per-dataset load status
//	/api/periods                               available periods, newest first
//	/api/summary                               filtered totals per dataset
//	/api/datasets/{dataset}/counts/{field}     category counts for one column
//	/api/datasets/{dataset}/export/{field}     the same counts as CSV download
//	/api/datasets/{dataset}/reload             drops the cached snapshot
//	/metrics                                   Prometheus scrape endpoint
package app
