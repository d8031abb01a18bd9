// Package otel bridges permkit's atomic counters into an OpenTelemetry
// meter via observable counters. The exporter holds no state of its own;
// values come from engine snapshots at collection time.
package otel
