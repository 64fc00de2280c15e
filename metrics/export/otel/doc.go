// Package otel exposes authcore metrics through an OpenTelemetry meter.
// All instruments are observable; values are pulled from engine snapshots
// during collection.
package otel
