// Package prometheus renders authcore metrics in Prometheus text
// exposition format without depending on the Prometheus client library.
// The engine's snapshot is the source of truth; rendering allocates one
// string per scrape.
package prometheus
