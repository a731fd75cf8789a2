// Package services composes the dataset pipeline into the operations the
// HTTP layer exposes: the merged period filter, per-dataset summaries and
// category count tables. It owns the load cache; selections are parsed per
// request and passed in, never stored.
package services
