package flow

import (
	"reflect"

	"github.com/pyiron/nodeflow/internal/core/dtype"
)

// PortType distinguishes value-carrying ports from control-flow ports.
type PortType string

const (
	// PortData ports carry a value and a dtype.
	PortData PortType = "data"
	// PortExec ports carry no value, only a control pulse.
	PortExec PortType = "exec"
)

// IOPos marks a port as an input or an output of its node.
type IOPos string

const (
	IOInput  IOPos = "input"
	IOOutput IOPos = "output"
)

// PortSpec is the blueprint a node class declares its ports with. The dtype
// on a spec is a prototype: every node instance built from the class clones
// it, so instances never share mutable dtype state.
type PortSpec struct {
	Type  PortType
	Label string
	Dtype *dtype.DType
}

// DataPort declares a data port blueprint. A nil dtype yields an Untyped
// port that is always matched by value.
func DataPort(label string, dt *dtype.DType) PortSpec {
	return PortSpec{Type: PortData, Label: label, Dtype: dt}
}

// ExecPort declares an exec port blueprint.
func ExecPort(label string) PortSpec {
	return PortSpec{Type: PortExec, Label: label}
}

// Port is a named slot on a node. Data ports hold a current value and a
// dtype; exec ports hold neither. The node back-reference is non-owning.
type Port struct {
	Label string
	Type  PortType
	IO    IOPos
	// Dtype is nil for exec ports, never nil for data ports (Untyped at
	// minimum). It is exclusively owned by this port.
	Dtype *dtype.DType
	// Val is the current value of a data port. It persists across
	// disconnects: a stale value is simply no longer kept live.
	Val any

	node        *Node
	connections []*Connection
	dtypeOK     bool
}

func newPort(n *Node, io IOPos, spec PortSpec) *Port {
	p := &Port{
		Label: spec.Label,
		Type:  spec.Type,
		IO:    io,
		node:  n,
	}
	if spec.Type == PortData {
		if spec.Dtype != nil {
			p.Dtype = spec.Dtype.Clone()
		} else {
			p.Dtype = dtype.Untyped()
		}
	}
	p.refreshReady()
	return p
}

// Node returns the owning node.
func (p *Port) Node() *Node { return p.node }

// Connections returns the connections this port participates in, in
// creation order. The slice is a copy; mutating it does not affect the flow.
func (p *Port) Connections() []*Connection {
	out := make([]*Connection, len(p.connections))
	copy(out, p.connections)
	return out
}

// Ready reports whether the port's current value satisfies its dtype. Exec
// ports are always ready. A node must not compute while a data input is not
// ready.
func (p *Port) Ready() bool {
	if p.Type == PortExec || p.Dtype == nil {
		return true
	}
	return p.dtypeOK
}

// refreshReady recomputes the cached readiness flag from the current value.
func (p *Port) refreshReady() {
	if p.Type == PortExec || p.Dtype == nil {
		p.dtypeOK = true
		return
	}
	if p.Val == nil {
		p.dtypeOK = p.Dtype.AllowNone
		return
	}
	p.dtypeOK = p.Dtype.AcceptsValue(p.Val)
}

// Update pushes a value into an input port and triggers the owning node.
// A value the dtype rejects is still stored, but the port reports not ready
// and the node skips its computation; partially configured graphs stay
// editable without raising. On exec inputs the value is ignored and only
// the pulse is delivered.
func (p *Port) Update(v any) error {
	if p.Type == PortData {
		p.Val = v
		p.refreshReady()
	}
	return p.node.Update(p.Index())
}

// Batch switches a data input's dtype to batched mode, rewrapping an
// unconnected port's value into a single-element collection so it stays
// consistent with the new dtype.
func (p *Port) Batch() error {
	if p.Type != PortData || p.Dtype == nil || p.Dtype.Batched {
		return nil
	}
	p.Dtype.Batched = true
	if len(p.connections) == 0 {
		return p.Update([]any{p.Val})
	}
	p.refreshReady()
	return p.node.Update(p.Index())
}

// Unbatch reverses Batch, unwrapping the last element of an unconnected
// port's collection value.
func (p *Port) Unbatch() error {
	if p.Type != PortData || p.Dtype == nil || !p.Dtype.Batched {
		return nil
	}
	p.Dtype.Batched = false
	if len(p.connections) == 0 {
		var v any
		if elems, ok := CollectionElems(p.Val); ok && len(elems) > 0 {
			v = elems[len(elems)-1]
		}
		return p.Update(v)
	}
	p.refreshReady()
	return p.node.Update(p.Index())
}

// Index returns the positional index of the port on its node. Positions are
// fixed at class-definition time and are a stable public contract used for
// connection addressing and serialization.
func (p *Port) Index() int {
	ports := p.node.Inputs
	if p.IO == IOOutput {
		ports = p.node.Outputs
	}
	for i, q := range ports {
		if q == p {
			return i
		}
	}
	return -1
}

// CollectionElems reports whether v is a concrete collection and returns
// its elements.
func CollectionElems(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return nil, false
}
