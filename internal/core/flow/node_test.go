package flow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyiron/nodeflow/internal/core/dtype"
)

func TestNode_DTypeIsolationAcrossInstances(t *testing.T) {
	f := New()
	class := choiceClass()

	a, err := f.CreateNode(class, 0, 0)
	require.NoError(t, err)
	b, err := f.CreateNode(class, 0, 0)
	require.NoError(t, err)

	require.NotSame(t, a.Inputs[0].Dtype, b.Inputs[0].Dtype)

	// mutating one instance's item list must not leak into the sibling
	a.Inputs[0].Dtype.Items = append(a.Inputs[0].Dtype.Items, "c")
	assert.True(t, a.Inputs[0].Dtype.AcceptsValue("c"))
	assert.False(t, b.Inputs[0].Dtype.AcceptsValue("c"))
	assert.Len(t, class.InitInputs[0].Dtype.Items, 2, "blueprint must stay untouched")
}

func TestNode_UpdateScenario_Double(t *testing.T) {
	f := New()
	src, _ := f.CreateNode(intValClass(), 0, 0)
	dbl, _ := f.CreateNode(doublerClass(), 0, 0)

	_, err := f.ConnectNodes(src.Outputs[0], dbl.Inputs[0])
	require.NoError(t, err)

	var afterCount int
	var triggeredInput int
	dbl.AfterUpdate.Connect(func(n *Node, inp int) {
		afterCount++
		triggeredInput = inp
	})

	require.NoError(t, src.Inputs[0].Update(5))

	assert.Equal(t, 10, dbl.Outputs[0].Val)
	assert.Equal(t, 1, afterCount, "one upstream write, one downstream update")
	assert.Equal(t, 0, triggeredInput)
}

func TestNode_ExecVersusDataPropagation(t *testing.T) {
	f := New()

	// exec chain: relay -> sink
	relay, _ := f.CreateNode(execRelayClass(), 0, 0)
	execSink, _ := f.CreateNode(execSinkClass(), 0, 0)
	_, err := f.ConnectNodes(relay.Outputs[0], execSink.Inputs[0])
	require.NoError(t, err)

	// data chain: src -> dbl
	src, _ := f.CreateNode(intValClass(), 0, 0)
	dbl, _ := f.CreateNode(doublerClass(), 0, 0)
	_, err = f.ConnectNodes(src.Outputs[0], dbl.Inputs[0])
	require.NoError(t, err)
	require.NoError(t, src.Inputs[0].Update(1))

	var execSinkUpdates, dblUpdates int
	execSink.AfterUpdate.Connect(func(n *Node, inp int) { execSinkUpdates++ })
	dbl.AfterUpdate.Connect(func(n *Node, inp int) { dblUpdates++ })
	dataBefore := dbl.Inputs[0].Val

	// firing the exec pulse updates the exec sink exactly once and leaves
	// the data chain untouched
	require.NoError(t, relay.Inputs[0].Update(nil))
	assert.Equal(t, 1, execSinkUpdates)
	assert.Equal(t, 0, dblUpdates)
	assert.Equal(t, dataBefore, dbl.Inputs[0].Val)

	// writing data updates the data consumer exactly once without firing
	// any exec signal
	require.NoError(t, src.Inputs[0].Update(2))
	assert.Equal(t, 1, execSinkUpdates)
	assert.Equal(t, 1, dblUpdates)
	assert.Equal(t, 4, dbl.Outputs[0].Val)
}

func TestNode_SkipsComputationWhileNotReady(t *testing.T) {
	strict := &NodeClass{
		Title:      "Strict",
		InitInputs: []PortSpec{DataPort("x", dtype.Integer())},
		UpdateEvent: func(n *Node, inp int) error {
			n.State["ran"] = true
			return nil
		},
	}
	f := New()
	n, _ := f.CreateNode(strict, 0, 0)

	// a rejected value is stored but the computation is skipped
	require.NoError(t, n.Inputs[0].Update("not an int"))
	assert.Equal(t, "not an int", n.Inputs[0].Val)
	assert.False(t, n.Inputs[0].Ready())
	assert.Nil(t, n.State["ran"])

	require.NoError(t, n.Inputs[0].Update(3))
	assert.Equal(t, true, n.State["ran"])
}

func TestNode_ComputationErrorStopsPropagation(t *testing.T) {
	boom := errors.New("boom")
	failing := &NodeClass{
		Title:       "Failing",
		InitInputs:  []PortSpec{DataPort("x", dtype.Integer())},
		InitOutputs: []PortSpec{DataPort("y", dtype.Integer().Nullable())},
		UpdateEvent: func(n *Node, inp int) error {
			// a partial result escapes before the failure
			if err := n.SetOutputVal(0, 99); err != nil {
				return err
			}
			return boom
		},
	}
	downstream := &NodeClass{
		Title:      "Downstream",
		InitInputs: []PortSpec{DataPort("y", dtype.Integer().Nullable())},
		UpdateEvent: func(n *Node, inp int) error {
			n.State["count"] = asInt(n.State["count"]) + 1
			return nil
		},
	}

	f := New()
	fail, _ := f.CreateNode(failing, 0, 0)
	down, _ := f.CreateNode(downstream, 0, 0)
	_, err := f.ConnectNodes(fail.Outputs[0], down.Inputs[0])
	require.NoError(t, err)

	err = fail.Inputs[0].Update(1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrComputation)
	assert.ErrorIs(t, err, boom)

	// outputs are reset to the invalid sentinel, not left at the partial 99
	assert.Nil(t, fail.Outputs[0].Val)
}

func TestNode_RemoveDuringOwnUpdateRejected(t *testing.T) {
	f := New()
	var removeErr error
	selfDestruct := &NodeClass{
		Title:      "SelfDestruct",
		InitInputs: []PortSpec{ExecPort("go")},
	}
	selfDestruct.UpdateEvent = func(n *Node, inp int) error {
		removeErr = f.RemoveNode(n)
		return nil
	}
	n, _ := f.CreateNode(selfDestruct, 0, 0)

	require.NoError(t, n.Inputs[0].Update(nil))
	assert.ErrorIs(t, removeErr, ErrNodeUpdating)
	assert.Len(t, f.Nodes(), 1)
}

func TestNode_PortLookupByLabel(t *testing.T) {
	f := New()
	n, _ := f.CreateNode(doublerClass(), 0, 0)

	require.NotNil(t, n.InputPort("x"))
	assert.Same(t, n.Inputs[0], n.InputPort("x"))
	assert.Nil(t, n.InputPort("missing"))
	require.NotNil(t, n.OutputPort("2x"))
	assert.Equal(t, 0, n.Inputs[0].Index())
}

func TestNode_SetOutputVal_Errors(t *testing.T) {
	f := New()
	relay, _ := f.CreateNode(execRelayClass(), 0, 0)
	src, _ := f.CreateNode(intValClass(), 0, 0)

	assert.ErrorIs(t, relay.SetOutputVal(0, 1), ErrNotDataPort)
	assert.ErrorIs(t, src.SetOutputVal(5, 1), ErrPortOutOfRange)
	assert.ErrorIs(t, src.ExecOutput(0), ErrNotExecPort)
	assert.ErrorIs(t, relay.ExecOutput(9), ErrPortOutOfRange)
}

func TestNode_RepresentationCapability(t *testing.T) {
	plain := intValClass()
	repr := &NodeClass{
		Title:      "Repr",
		InitInputs: []PortSpec{DataPort("v", dtype.Untyped())},
		Representations: func(n *Node) map[string]any {
			return map[string]any{"v": n.Input(0)}
		},
	}

	f := New()
	p, _ := f.CreateNode(plain, 0, 0)
	r, _ := f.CreateNode(repr, 0, 0)

	assert.Nil(t, p.RepresentationFunc())
	require.NotNil(t, r.RepresentationFunc())

	require.NoError(t, r.Inputs[0].Update("hello"))
	assert.True(t, r.RepresentationStale)
	assert.Equal(t, map[string]any{"v": "hello"}, r.RepresentationFunc()(r))
}

func asInt(v any) int {
	if i, ok := v.(int); ok {
		return i
	}
	return 0
}
