// Package internaldefs holds the metric name and help-text table shared by
// the Prometheus and OpenTelemetry exporters, so both surfaces stay in
// sync.
package internaldefs
