// Package otel provides OpenTelemetry metric exporter bindings for persist counters.
//
// [NewOTelExporter] registers an Int64ObservableCounter instrument for each
// persist metric. A single callback reads [persist.Scheme.MetricsSnapshot] on
// each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate scheme state.
package otel
