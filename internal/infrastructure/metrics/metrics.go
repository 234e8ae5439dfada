package metrics

import (
	"expvar"
)

// Flow structural metrics.
var (
	nodesCreated   = new(expvar.Int)
	connections    = new(expvar.Int)
	disconnections = new(expvar.Int)
	validityChecks = expvar.NewMap("nodeflow_validity_checks_total")
)

// Propagation metrics.
var (
	nodeUpdates      = new(expvar.Int)
	updatesSkipped   = new(expvar.Int)
	execPulses       = new(expvar.Int)
	valuesPropagated = new(expvar.Int)
)

func init() {
	expvar.Publish("nodeflow_nodes_created_total", nodesCreated)
	expvar.Publish("nodeflow_connections_total", connections)
	expvar.Publish("nodeflow_disconnections_total", disconnections)
	expvar.Publish("nodeflow_node_updates_total", nodeUpdates)
	expvar.Publish("nodeflow_updates_skipped_total", updatesSkipped)
	expvar.Publish("nodeflow_exec_pulses_total", execPulses)
	expvar.Publish("nodeflow_values_propagated_total", valuesPropagated)
}

// Structural helpers
func IncNodesCreated()   { nodesCreated.Add(1) }
func IncConnections()    { connections.Add(1) }
func IncDisconnections() { disconnections.Add(1) }

// IncValidityChecks counts connection validity checks by outcome.
func IncValidityChecks(valid bool) {
	if valid {
		validityChecks.Add("valid", 1)
	} else {
		validityChecks.Add("invalid", 1)
	}
}

// Propagation helpers
func IncNodeUpdates()             { nodeUpdates.Add(1) }
func IncUpdatesSkipped()          { updatesSkipped.Add(1) }
func IncExecPulses()              { execPulses.Add(1) }
func IncValuesPropagated(n int64) { valuesPropagated.Add(n) }
