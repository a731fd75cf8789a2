// Package http contains the chi HTTP handlers of the dashboard API. The
// handlers translate query parameters into a per-request period selection,
// call the dashboard service and render JSON via chi/render; chart drawing
// itself happens in the frontend, which consumes the pre-aggregated tables
// returned here.
package http
