// Package prometheus provides Prometheus collectors for persist metrics.
//
// [NewPrometheusExporter] accepts a [persist.Scheme] and exposes an [http.Handler]
// that renders all persist counters in Prometheus text exposition format.
// Counter names are prefixed persist_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate scheme state.
package prometheus
