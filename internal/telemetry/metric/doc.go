// Package metric exports quadrille commit-path counters in Prometheus
// format.
//
// A Collector adapts one occ.Stats to the prometheus.Collector interface;
// the bench tool registers it and serves /metrics while a run is in
// flight. The occ core stays metrics-free: everything here reads the
// counters the commit path already maintains.
package metric
