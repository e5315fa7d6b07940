// Package otel publishes goEphemeral metrics through an OpenTelemetry meter.
//
// [NewExporter] registers an Int64ObservableCounter per counter and an
// Int64ObservableGauge per latency bucket. A single callback reads
// [goEphemeral.Engine.MetricsSnapshot] on each collection cycle.
//
// Callers own the MeterProvider and pass in the Meter.
package otel
