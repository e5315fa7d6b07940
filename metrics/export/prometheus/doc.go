// Package prometheus renders goEphemeral metrics in Prometheus text exposition format.
//
// [NewExporter] reads from an [goEphemeral.Engine] and [Exporter.Handler] serves the
// output over HTTP. Counters are named ephemeral_*_total and the validity check
// latency histogram is ephemeral_validate_latency_seconds.
//
// Nothing is registered in a global registry; callers mount the handler themselves.
package prometheus
