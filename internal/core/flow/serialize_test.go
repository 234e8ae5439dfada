package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyiron/nodeflow/internal/core/dtype"
)

func testResolver(classes ...*NodeClass) ClassResolver {
	byID := map[string]*NodeClass{}
	for _, c := range classes {
		byID[c.Identifier()] = c
	}
	return func(identifier string) (*NodeClass, error) {
		c, ok := byID[identifier]
		if !ok {
			return nil, ErrNilClass
		}
		return c, nil
	}
}

func TestFlow_DataLoadRoundTrip(t *testing.T) {
	srcClass := intValClass()
	dblClass := doublerClass()
	pickClass := choiceClass()

	f := New()
	require.NoError(t, f.SetAlgorithmMode(ModeExec))
	src, _ := f.CreateNode(srcClass, 1, 2)
	dbl, _ := f.CreateNode(dblClass, 3, 4)
	pick, _ := f.CreateNode(pickClass, 5, 6)

	require.NoError(t, src.Inputs[0].Update(7))
	_, err := f.ConnectNodes(src.Outputs[0], dbl.Inputs[0])
	require.NoError(t, err)

	// runtime-mutated dtype state must survive the round trip
	pick.Inputs[0].Dtype.Items = append(pick.Inputs[0].Dtype.Items, "c")
	require.NoError(t, pick.Inputs[0].Update("c"))

	doc := f.Data()

	restored := New()
	require.NoError(t, restored.Load(doc, testResolver(srcClass, dblClass, pickClass)))

	nodes := restored.Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, ModeExec, restored.Mode())
	assert.Equal(t, src.GlobalID, nodes[0].GlobalID)
	assert.Equal(t, "IntVal", nodes[0].Class.Title)
	assert.Equal(t, 1.0, nodes[0].PosX)
	assert.Equal(t, 7, nodes[0].Input(0))
	assert.Equal(t, 14, nodes[1].Outputs[0].Val)
	assert.Equal(t, []any{"a", "b", "c"}, nodes[2].Inputs[0].Dtype.Items)
	assert.Equal(t, "c", nodes[2].Input(0))
	require.Len(t, restored.Connections(), 1)

	// serialize -> load -> serialize yields an equivalent document
	assert.Equal(t, doc, restored.Data())
}

func TestFlow_LoadKeepsRestoredNodeState(t *testing.T) {
	tally := &NodeClass{
		Title:       "Tally",
		InitInputs:  []PortSpec{ExecPort("bump")},
		InitOutputs: []PortSpec{DataPort("n", dtype.Integer())},
		PlaceEvent: func(n *Node) {
			n.State["n"] = 0
		},
		UpdateEvent: func(n *Node, inp int) error {
			count, _ := n.State["n"].(int)
			count++
			n.State["n"] = count
			return n.SetOutputVal(0, count)
		},
	}

	f := New()
	n, err := f.CreateNode(tally, 0, 0)
	require.NoError(t, err)
	require.NoError(t, n.Inputs[0].Update(nil))
	require.NoError(t, n.Inputs[0].Update(nil))
	require.Equal(t, 2, n.State["n"])

	restored := New()
	require.NoError(t, restored.Load(f.Data(), testResolver(tally)))
	rn := restored.Nodes()[0]

	// the place event's initial state must not clobber the saved state
	assert.Equal(t, 2, rn.State["n"])
	assert.Equal(t, 2, rn.Outputs[0].Val)

	require.NoError(t, rn.Inputs[0].Update(nil))
	assert.Equal(t, 3, rn.Outputs[0].Val)
}

func TestFlow_LoadRejectsUnknownClass(t *testing.T) {
	f := New()
	_, err := f.CreateNode(intValClass(), 0, 0)
	require.NoError(t, err)
	doc := f.Data()

	restored := New()
	err = restored.Load(doc, testResolver())
	assert.Error(t, err)
}

func TestFlow_LoadRejectsDanglingConnection(t *testing.T) {
	srcClass := intValClass()
	f := New()
	src, _ := f.CreateNode(srcClass, 0, 0)
	dbl, _ := f.CreateNode(doublerClass(), 0, 0)
	require.NoError(t, src.Inputs[0].Update(1))
	_, err := f.ConnectNodes(src.Outputs[0], dbl.Inputs[0])
	require.NoError(t, err)

	doc := f.Data()
	doc.Connections[0].TargetGID = "00000000-0000-0000-0000-000000000000"

	restored := New()
	err = restored.Load(doc, testResolver(srcClass, doublerClass()))
	assert.ErrorIs(t, err, ErrNodeNotFound)
}
