// Package std provides a small library of general-purpose node classes
// exercising the port and dtype contracts: value sources, display sinks,
// arithmetic, choice selection, batching helpers and exec-driven counters.
// Hosts register the library under the "std" group via Classes.
package std

import (
	"fmt"

	"github.com/pyiron/nodeflow/internal/core/dtype"
	"github.com/pyiron/nodeflow/internal/core/flow"
)

// Classes returns the full library in a stable order. Each call builds
// fresh class values so separate sessions never share blueprints.
func Classes() []*flow.NodeClass {
	return []*flow.NodeClass{
		Val(),
		Display(),
		Add(),
		Double(),
		Select(),
		Batch(),
		Debatch(),
		Pulse(),
		Counter(),
	}
}

// Val passes any value through: hosts push into the input, consumers read
// the mirrored output.
func Val() *flow.NodeClass {
	return &flow.NodeClass{
		Title: "Val",
		Doc:   "Mirrors its untyped input on its output.",
		InitInputs: []flow.PortSpec{
			flow.DataPort("val", nil),
		},
		InitOutputs: []flow.PortSpec{
			flow.DataPort("val", nil),
		},
		UpdateEvent: func(n *flow.Node, inp int) error {
			return n.SetOutputVal(0, n.Input(0))
		},
	}
}

// Display is a sink that records the last value it saw and exposes it as a
// representation.
func Display() *flow.NodeClass {
	return &flow.NodeClass{
		Title: "Display",
		Doc:   "Stores the most recent input value for host display.",
		InitInputs: []flow.PortSpec{
			flow.DataPort("value", dtype.Untyped()),
		},
		UpdateEvent: func(n *flow.Node, inp int) error {
			n.State["displayed"] = n.Input(0)
			return nil
		},
		Representations: func(n *flow.Node) map[string]any {
			return map[string]any{"value": n.State["displayed"]}
		},
	}
}

// Add sums its two float inputs.
func Add() *flow.NodeClass {
	return &flow.NodeClass{
		Title: "Add",
		InitInputs: []flow.PortSpec{
			flow.DataPort("a", dtype.FloatNum()),
			flow.DataPort("b", dtype.FloatNum()),
		},
		InitOutputs: []flow.PortSpec{
			flow.DataPort("sum", dtype.FloatNum()),
		},
		UpdateEvent: func(n *flow.Node, inp int) error {
			a, err := asFloat(n.Input(0))
			if err != nil {
				return err
			}
			b, err := asFloat(n.Input(1))
			if err != nil {
				return err
			}
			return n.SetOutputVal(0, a+b)
		},
	}
}

// Double multiplies its float input by two.
func Double() *flow.NodeClass {
	return &flow.NodeClass{
		Title: "Double",
		InitInputs: []flow.PortSpec{
			flow.DataPort("x", dtype.FloatNum()),
		},
		InitOutputs: []flow.PortSpec{
			flow.DataPort("2x", dtype.FloatNum()),
		},
		UpdateEvent: func(n *flow.Node, inp int) error {
			x, err := asFloat(n.Input(0))
			if err != nil {
				return err
			}
			return n.SetOutputVal(0, 2*x)
		},
	}
}

// Select narrows a choice input against an options list: updating the
// options rewrites the choice dtype's item list, and the chosen value is
// forwarded when it is (still) a member.
func Select() *flow.NodeClass {
	return &flow.NodeClass{
		Title: "Select",
		InitInputs: []flow.PortSpec{
			flow.DataPort("options", dtype.List()),
			flow.DataPort("choice", dtype.Choice().Nullable()),
		},
		InitOutputs: []flow.PortSpec{
			flow.DataPort("selected", dtype.Untyped()),
		},
		UpdateEvent: func(n *flow.Node, inp int) error {
			choice := n.Inputs[1]
			if opts, ok := flow.CollectionElems(n.Input(0)); ok {
				choice.Dtype.Items = opts
			}
			if !choice.Dtype.AcceptsValue(choice.Val) {
				return nil
			}
			return n.SetOutputVal(0, choice.Val)
		},
	}
}

// Batch wraps a list into a batched data stream.
func Batch() *flow.NodeClass {
	return &flow.NodeClass{
		Title: "Batch",
		InitInputs: []flow.PortSpec{
			flow.DataPort("list", dtype.List()),
		},
		InitOutputs: []flow.PortSpec{
			flow.DataPort("batch", dtype.Data().Batch().Nullable()),
		},
		UpdateEvent: func(n *flow.Node, inp int) error {
			return n.SetOutputVal(0, n.Input(0))
		},
	}
}

// Debatch flattens a batched input back into a plain list.
func Debatch() *flow.NodeClass {
	return &flow.NodeClass{
		Title: "Debatch",
		InitInputs: []flow.PortSpec{
			flow.DataPort("batch", dtype.Untyped().Batch()),
		},
		InitOutputs: []flow.PortSpec{
			flow.DataPort("list", dtype.List().Nullable()),
		},
		UpdateEvent: func(n *flow.Node, inp int) error {
			elems, ok := flow.CollectionElems(n.Input(0))
			if !ok {
				return nil
			}
			return n.SetOutputVal(0, elems)
		},
	}
}

// Pulse forwards an incoming exec pulse to its exec output.
func Pulse() *flow.NodeClass {
	return &flow.NodeClass{
		Title: "Pulse",
		InitInputs: []flow.PortSpec{
			flow.ExecPort("trigger"),
		},
		InitOutputs: []flow.PortSpec{
			flow.ExecPort("fired"),
		},
		UpdateEvent: func(n *flow.Node, inp int) error {
			if inp == 0 {
				return n.ExecOutput(0)
			}
			return nil
		},
	}
}

// Counter increments on pulses to its first exec input, resets on the
// second, and publishes the count on a data output. The triggering input
// index is how it tells the two pulses apart.
func Counter() *flow.NodeClass {
	return &flow.NodeClass{
		Title: "Counter",
		InitInputs: []flow.PortSpec{
			flow.ExecPort("count"),
			flow.ExecPort("reset"),
		},
		InitOutputs: []flow.PortSpec{
			flow.DataPort("n", dtype.Integer()),
		},
		PlaceEvent: func(n *flow.Node) {
			n.State["n"] = 0
		},
		UpdateEvent: func(n *flow.Node, inp int) error {
			// restored state may hold the count as int64 or float64
			// depending on the codec
			count := asCount(n.State["n"])
			switch inp {
			case 0:
				count++
			case 1:
				count = 0
			}
			n.State["n"] = count
			return n.SetOutputVal(0, count)
		},
	}
}

func asCount(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int8:
		return int(x)
	case int16:
		return int(x)
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint64:
		return int(x)
	case float64:
		return int(x)
	default:
		return 0
	}
}

func asFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
