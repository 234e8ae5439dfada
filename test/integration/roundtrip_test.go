// Package integration exercises the full stack end to end: build a graph
// from the standard library, run data through it, persist the session
// through a store and rebuild it in a fresh session.
package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyiron/nodeflow/pkg/nodeflow"
)

func mustResolve(t *testing.T, s *nodeflow.Session, id string) *nodeflow.NodeClass {
	t.Helper()
	class, err := s.Registry().Resolve(id)
	require.NoError(t, err)
	return class
}

func TestSessionPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := nodeflow.NewMemoryStore()

	s, err := nodeflow.NewSession()
	require.NoError(t, err)
	sc, err := s.CreateScript("pipeline")
	require.NoError(t, err)

	val, err := sc.Flow.CreateNode(mustResolve(t, s, "std.Val"), 0, 0)
	require.NoError(t, err)
	add, err := sc.Flow.CreateNode(mustResolve(t, s, "std.Add"), 100, 0)
	require.NoError(t, err)
	disp, err := sc.Flow.CreateNode(mustResolve(t, s, "std.Display"), 200, 0)
	require.NoError(t, err)

	// untyped outputs are matched by value, so push data before connecting
	require.NoError(t, val.Inputs[0].Update(1.5))
	_, err = sc.Flow.ConnectNodes(val.Outputs[0], add.Inputs[0])
	require.NoError(t, err)
	require.NoError(t, add.Inputs[1].Update(2.5))
	_, err = sc.Flow.ConnectNodes(add.Outputs[0], disp.Inputs[0])
	require.NoError(t, err)

	require.Equal(t, 4.0, add.Outputs[0].Val)
	require.Equal(t, 4.0, disp.State["displayed"])

	require.NoError(t, nodeflow.SaveSession(ctx, store, s))

	fresh, err := nodeflow.NewSession()
	require.NoError(t, err)
	require.NoError(t, nodeflow.LoadSession(ctx, store, fresh, s.ID))

	sc2, err := fresh.Script("pipeline")
	require.NoError(t, err)
	nodes := sc2.Flow.Nodes()
	require.Len(t, nodes, 3)
	assert.Len(t, sc2.Flow.Connections(), 2)

	restored, err := sc2.Flow.NodeByID(add.GlobalID)
	require.NoError(t, err)
	assert.Equal(t, "std.Add", restored.Class.Identifier())
	assert.Equal(t, 100.0, restored.PosX)
	assert.Equal(t, 4.0, restored.Outputs[0].Val)
	assert.Equal(t, 1.5, restored.Inputs[0].Val)

	restoredDisp, err := sc2.Flow.NodeByID(disp.GlobalID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, restoredDisp.State["displayed"])

	// the rebuilt graph is live: new data flows through restored connections
	restoredVal, err := sc2.Flow.NodeByID(val.GlobalID)
	require.NoError(t, err)
	require.NoError(t, restoredVal.Inputs[0].Update(10.0))
	assert.Equal(t, 12.5, restored.Outputs[0].Val)
	assert.Equal(t, 12.5, restoredDisp.State["displayed"])
}

func TestExecGraphPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := nodeflow.NewMemoryStore()

	s, err := nodeflow.NewSession()
	require.NoError(t, err)
	sc, err := s.CreateScript("counting")
	require.NoError(t, err)
	require.NoError(t, sc.Flow.SetAlgorithmMode("exec"))

	pulse, err := sc.Flow.CreateNode(mustResolve(t, s, "std.Pulse"), 0, 0)
	require.NoError(t, err)
	counter, err := sc.Flow.CreateNode(mustResolve(t, s, "std.Counter"), 50, 0)
	require.NoError(t, err)
	_, err = sc.Flow.ConnectNodes(pulse.Outputs[0], counter.Inputs[0])
	require.NoError(t, err)

	require.NoError(t, pulse.Inputs[0].Update(nil))
	require.NoError(t, pulse.Inputs[0].Update(nil))
	require.NoError(t, pulse.Inputs[0].Update(nil))
	require.Equal(t, 3, counter.Outputs[0].Val)

	require.NoError(t, nodeflow.SaveSession(ctx, store, s))

	fresh, err := nodeflow.NewSession()
	require.NoError(t, err)
	require.NoError(t, nodeflow.LoadSession(ctx, store, fresh, s.ID))

	sc2, err := fresh.Script("counting")
	require.NoError(t, err)
	assert.Equal(t, "exec", string(sc2.Flow.Mode()))

	// the restored counter resumes from its persisted count
	restored, err := sc2.Flow.NodeByID(counter.GlobalID)
	require.NoError(t, err)
	restoredPulse, err := sc2.Flow.NodeByID(pulse.GlobalID)
	require.NoError(t, err)
	require.NoError(t, restoredPulse.Inputs[0].Update(nil))
	assert.Equal(t, 4, restored.Outputs[0].Val)
}
