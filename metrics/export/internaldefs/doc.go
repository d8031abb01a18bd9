// Package internaldefs holds the metric definition table shared by the
// Prometheus and OpenTelemetry exporters. It is not part of the public API.
package internaldefs
