// Package metrics exposes expvar-published counters for the nodeflow
// runtime: flow structure changes and update propagation. The counters are
// served by nodeflow-server on /debug/vars.
package metrics
