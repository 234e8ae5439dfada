package flow

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pyiron/nodeflow/internal/infrastructure/metrics"
)

// UpdateFunc is the user-supplied computation of a node class. It reads the
// node's inputs, writes outputs via SetOutputVal or fires ExecOutput, and
// receives the index of the input that triggered the update (-1 when the
// trigger was not an input, e.g. an initial placement update). Returning an
// error stops propagation at this node.
type UpdateFunc func(n *Node, inp int) error

// PlaceFunc runs once when a node is placed in a flow, after the node
// exists but before any connection is attached.
type PlaceFunc func(n *Node)

// NodeClass declares a node type: its title, its port blueprints and its
// computation. Classes are immutable after registration; all per-instance
// mutable state lives on the Node.
type NodeClass struct {
	// Title identifies the class. It does not have to be unique within a
	// flow; many instances of one class may coexist.
	Title string
	// Group is the registry namespace the class was registered under.
	Group string
	Doc   string

	// InitInputs and InitOutputs fix the port order for every instance.
	InitInputs  []PortSpec
	InitOutputs []PortSpec

	// UpdateEvent is the computation. A nil UpdateEvent makes the node a
	// pure value holder.
	UpdateEvent UpdateFunc
	// PlaceEvent optionally runs extra placement logic after defaults are
	// filled in.
	PlaceEvent PlaceFunc
	// Representations optionally derives display representations from the
	// node. Classes opt into the capability by setting the field; hosts
	// check RepresentationFunc() instead of probing at runtime.
	Representations func(n *Node) map[string]any
}

// Identifier returns the registry key form "group.title", or just the title
// for ungrouped classes.
func (c *NodeClass) Identifier() string {
	if c.Group == "" {
		return c.Title
	}
	return c.Group + "." + c.Title
}

// Node is an addressable unit of computation: ordered input ports, ordered
// output ports and a class-supplied update function. Nodes are created and
// removed through their owning flow only.
type Node struct {
	Class    *NodeClass
	GlobalID string
	Inputs   []*Port
	Outputs  []*Port
	// State is per-instance scratch storage for update functions, e.g.
	// counters for exec-driven nodes. Serialized with the node.
	State map[string]any
	// PosX and PosY are opaque position metadata stored and round-tripped
	// for the host, never interpreted by the engine.
	PosX, PosY float64

	// BeforeUpdate fires before each computation, AfterUpdate after it,
	// both with the triggering input index. AfterUpdate also fires when
	// the computation failed, so hosts can clear busy markers.
	BeforeUpdate UpdateSignal
	AfterUpdate  UpdateSignal

	// RepresentationStale is set after every update so hosts can
	// recompute derived representations lazily.
	RepresentationStale bool

	owner    *Flow
	updating bool
}

func newNode(class *NodeClass, owner *Flow) *Node {
	n := &Node{
		Class:    class,
		GlobalID: uuid.NewString(),
		State:    map[string]any{},
		owner:    owner,
	}
	for _, spec := range class.InitInputs {
		n.Inputs = append(n.Inputs, newPort(n, IOInput, spec))
	}
	for _, spec := range class.InitOutputs {
		n.Outputs = append(n.Outputs, newPort(n, IOOutput, spec))
	}
	return n
}

// place fills every still-unset data input with its dtype default and runs
// the class place event. On the load path placement runs first; state and
// values restored from a document overwrite whatever placement set.
func (n *Node) place() {
	for _, p := range n.Inputs {
		if p.Type != PortData || p.Dtype == nil {
			continue
		}
		if p.Val == nil && p.Dtype.Default != nil {
			p.Val = p.Dtype.Default
			p.refreshReady()
		}
	}
	if n.Class.PlaceEvent != nil {
		n.Class.PlaceEvent(n)
	}
}

// Flow returns the owning flow.
func (n *Node) Flow() *Flow { return n.owner }

// Input returns the current value of input i.
func (n *Node) Input(i int) any {
	return n.Inputs[i].Val
}

// InputPort finds an input port by label. Labels are not required unique;
// the first match wins.
func (n *Node) InputPort(label string) *Port {
	for _, p := range n.Inputs {
		if p.Label == label {
			return p
		}
	}
	return nil
}

// OutputPort finds an output port by label.
func (n *Node) OutputPort(label string) *Port {
	for _, p := range n.Outputs {
		if p.Label == label {
			return p
		}
	}
	return nil
}

// Update runs the node's computation, bracketed by the before/after update
// signals. The computation is skipped silently when the triggering data
// input is not ready, so a rejected value never reaches the update function.
// A computation error resets the node's data outputs to nil so downstream
// consumers cannot mistake partial results for valid ones, and is surfaced
// to the caller wrapped in ErrComputation.
func (n *Node) Update(inp int) error {
	n.BeforeUpdate.Emit(n, inp)
	defer func() {
		n.RepresentationStale = true
		n.AfterUpdate.Emit(n, inp)
	}()

	if !n.inputReady(inp) {
		metrics.IncUpdatesSkipped()
		return nil
	}
	if n.Class.UpdateEvent == nil {
		return nil
	}

	metrics.IncNodeUpdates()
	n.updating = true
	err := n.Class.UpdateEvent(n, inp)
	n.updating = false
	if err != nil {
		n.resetOutputs()
		return fmt.Errorf("%w: %s (%s): %w", ErrComputation, n.Class.Title, n.GlobalID, err)
	}
	return nil
}

// SetOutputVal writes a value to data output i and synchronously propagates
// it to every connected input; propagation depth equals dataflow depth.
// Feedback cycles are the caller's responsibility.
func (n *Node) SetOutputVal(i int, v any) error {
	if i < 0 || i >= len(n.Outputs) {
		return ErrPortOutOfRange
	}
	out := n.Outputs[i]
	if out.Type != PortData {
		return ErrNotDataPort
	}
	out.Val = v
	out.refreshReady()
	metrics.IncValuesPropagated(int64(len(out.connections)))
	for _, conn := range out.connections {
		if err := conn.Inp.Update(v); err != nil {
			return err
		}
	}
	return nil
}

// ExecOutput fires a control pulse out of exec output i: each connected
// node's update runs with the index of its connected input, but no value is
// passed or stored.
func (n *Node) ExecOutput(i int) error {
	if i < 0 || i >= len(n.Outputs) {
		return ErrPortOutOfRange
	}
	out := n.Outputs[i]
	if out.Type != PortExec {
		return ErrNotExecPort
	}
	metrics.IncExecPulses()
	for _, conn := range out.connections {
		if err := conn.Inp.node.Update(conn.Inp.Index()); err != nil {
			return err
		}
	}
	return nil
}

// RepresentationFunc returns the class's representation capability, or nil
// when the class did not opt in.
func (n *Node) RepresentationFunc() func(*Node) map[string]any {
	return n.Class.Representations
}

// inputReady reports whether the triggering input currently satisfies its
// dtype. Exec inputs and out-of-range triggers (placement updates) are
// always ready.
func (n *Node) inputReady(inp int) bool {
	if inp < 0 || inp >= len(n.Inputs) {
		return true
	}
	return n.Inputs[inp].Ready()
}

// resetOutputs clears data outputs to nil without propagating, marking any
// already-produced partial results invalid.
func (n *Node) resetOutputs() {
	for _, p := range n.Outputs {
		if p.Type == PortData {
			p.Val = nil
			p.refreshReady()
		}
	}
}
