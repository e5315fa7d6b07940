// Package internaldefs holds the metric names and bucket boundaries shared by the
// Prometheus and OpenTelemetry exporters.
//
// Both exporters read from the same tables, so a rename here changes every output.
// This package performs no I/O and imports no exporter package.
package internaldefs
