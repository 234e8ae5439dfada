// Package flow provides the node-graph runtime: ports, connections, nodes
// and the flow that owns them, with synchronous update propagation and
// connection validity checking. Core domain package; the only dependencies
// are the dtype system and expvar-based metrics.
package flow

import (
	"fmt"

	"github.com/pyiron/nodeflow/internal/core/document"
	"github.com/pyiron/nodeflow/internal/core/dtype"
	"github.com/pyiron/nodeflow/internal/infrastructure/metrics"
)

// Mode selects the default propagation policy nodes may branch on.
type Mode string

const (
	// ModeData recomputes nodes whenever upstream data changes.
	ModeData Mode = "data"
	// ModeExec recomputes nodes on exec pulses only.
	ModeExec Mode = "exec"
)

// ClassResolver maps a serialized class identifier back to a node class,
// normally backed by the session registry.
type ClassResolver func(identifier string) (*NodeClass, error)

// Flow owns a set of nodes and the connections between them. All structural
// mutation and all propagation for one flow must happen on a single
// goroutine; independent flows share no state.
type Flow struct {
	mode        Mode
	nodes       []*Node
	connections []*Connection

	// ConnectionRequestValid reports the outcome of every validity check,
	// for host UI feedback.
	ConnectionRequestValid BoolSignal
}

// New creates an empty flow in data mode.
func New() *Flow {
	return &Flow{mode: ModeData}
}

// Mode returns the current algorithm mode.
func (f *Flow) Mode() Mode { return f.mode }

// SetAlgorithmMode switches the propagation policy flag read by nodes.
func (f *Flow) SetAlgorithmMode(m Mode) error {
	if m != ModeData && m != ModeExec {
		return ErrInvalidMode
	}
	f.mode = m
	return nil
}

// Nodes returns the nodes in placement order. The slice is a copy.
func (f *Flow) Nodes() []*Node {
	out := make([]*Node, len(f.nodes))
	copy(out, f.nodes)
	return out
}

// Connections returns the connections in creation order. The slice is a copy.
func (f *Flow) Connections() []*Connection {
	out := make([]*Connection, len(f.connections))
	copy(out, f.connections)
	return out
}

// NodeByID looks a node up by its stable global ID.
func (f *Flow) NodeByID(gid string) (*Node, error) {
	for _, n := range f.nodes {
		if n.GlobalID == gid {
			return n, nil
		}
	}
	return nil, ErrNodeNotFound
}

// CreateNode instantiates a node from its class: ports are built from the
// class blueprints with cloned dtypes, a fresh global ID is assigned, the
// place event fills unset input defaults, and the node is appended to the
// flow. x and y are opaque host position metadata.
func (f *Flow) CreateNode(class *NodeClass, x, y float64) (*Node, error) {
	if class == nil {
		return nil, ErrNilClass
	}
	n := newNode(class, f)
	n.PosX, n.PosY = x, y
	n.place()
	f.nodes = append(f.nodes, n)
	metrics.IncNodesCreated()
	return n, nil
}

// RemoveNode removes a node from the flow. The caller must remove every
// connection touching the node first; the flow does not cascade. Removing a
// node from inside its own update is a contract violation.
func (f *Flow) RemoveNode(n *Node) error {
	idx := -1
	for i, m := range f.nodes {
		if m == n {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNodeNotFound
	}
	if n.updating {
		return ErrNodeUpdating
	}
	for _, c := range f.connections {
		if c.touches(n) {
			return ErrNodeHasConnections
		}
	}
	f.nodes = append(f.nodes[:idx], f.nodes[idx+1:]...)
	return nil
}

// CheckConnectionValidity decides, order-independently, whether connecting
// p1 and p2 would be legal. It has no side effects on the flow and emits
// the result on ConnectionRequestValid. When the pair is already connected
// the request is a disconnect and is always legal.
//
// For data ports the dtype-vs-dtype check is preferred; the check falls
// back to dtype-vs-value when either side is Untyped or when the two sides
// disagree on batching while the output already holds a concrete
// collection. The fallback is what lets an unbatched consumer read a batch
// producer's materialized collection, and vice versa.
func (f *Flow) CheckConnectionValidity(p1, p2 *Port) bool {
	valid := true
	if p1 == nil || p2 == nil {
		valid = false
	}
	if valid && p1.node == p2.node {
		valid = false
	}
	if valid && (p1.IO == p2.IO || p1.Type != p2.Type) {
		valid = false
	}
	if valid && p1.Type == PortData {
		inp, out := orient(p1, p2)
		if f.connectionBetween(inp, out) == nil && inp.Dtype != nil {
			valid = f.dataPairValid(inp, out)
		}
	}
	f.ConnectionRequestValid.Emit(valid)
	metrics.IncValidityChecks(valid)
	return valid
}

func (f *Flow) dataPairValid(inp, out *Port) bool {
	byValue := inp.Dtype.Kind == dtype.KindUntyped ||
		out.Dtype == nil || out.Dtype.Kind == dtype.KindUntyped
	if !byValue && inp.Dtype.Batched != out.Dtype.Batched {
		// An empty collection passes the elementwise check trivially.
		if _, isColl := CollectionElems(out.Val); isColl {
			byValue = true
		}
	}
	if byValue {
		return inp.Dtype.AcceptsValue(out.Val)
	}
	ok, err := inp.Dtype.AcceptsDType(out.Dtype)
	return err == nil && ok
}

// ConnectNodes connects two ports, or disconnects them when they are
// already connected: connect and disconnect share this one entry point as a
// toggle. On a fresh connect the newly wired input is updated immediately
// so existing upstream data reaches the consumer. Returns (nil, nil) for an
// invalid request and after a toggle-disconnect; structural misuse (a port
// whose node is not in this flow) is an error.
func (f *Flow) ConnectNodes(p1, p2 *Port) (*Connection, error) {
	if p1 == nil || p2 == nil {
		return nil, ErrNilPort
	}
	if !f.contains(p1.node) || !f.contains(p2.node) {
		return nil, ErrNodeNotFound
	}
	if c := f.connectionBetweenPair(p1, p2); c != nil {
		if err := f.RemoveConnection(c); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if !f.CheckConnectionValidity(p1, p2) {
		return nil, nil
	}
	inp, out := orient(p1, p2)
	// Data inputs accept at most one inbound connection; a new connect
	// replaces the old edge.
	if inp.Type == PortData && len(inp.connections) > 0 {
		if err := f.RemoveConnection(inp.connections[0]); err != nil {
			return nil, err
		}
	}
	conn := f.addConnection(inp, out)
	if inp.Type == PortData {
		if err := inp.Update(out.Val); err != nil {
			return conn, err
		}
	}
	return conn, nil
}

// RemoveConnection severs a connection. The disconnected input keeps its
// last value; it is simply no longer kept live.
func (f *Flow) RemoveConnection(c *Connection) error {
	idx := -1
	for i, e := range f.connections {
		if e == c {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrConnectionNotFound
	}
	f.connections = append(f.connections[:idx], f.connections[idx+1:]...)
	c.Out.connections = removePortConn(c.Out.connections, c)
	c.Inp.connections = removePortConn(c.Inp.connections, c)
	metrics.IncDisconnections()
	return nil
}

func (f *Flow) addConnection(inp, out *Port) *Connection {
	conn := &Connection{Out: out, Inp: inp}
	f.connections = append(f.connections, conn)
	out.connections = append(out.connections, conn)
	inp.connections = append(inp.connections, conn)
	metrics.IncConnections()
	return conn
}

// Data serializes the flow into its document form: nodes in placement
// order with per-port value and dtype state, connections addressed by
// (global ID, port index).
func (f *Flow) Data() document.FlowDoc {
	doc := document.FlowDoc{Mode: string(f.mode)}
	for _, n := range f.nodes {
		nd := document.NodeDoc{
			Identifier: n.Class.Identifier(),
			GlobalID:   n.GlobalID,
			PosX:       n.PosX,
			PosY:       n.PosY,
		}
		if len(n.State) > 0 {
			nd.State = make(map[string]any, len(n.State))
			for k, v := range n.State {
				nd.State[k] = v
			}
		}
		for _, p := range n.Inputs {
			nd.Inputs = append(nd.Inputs, portDoc(p))
		}
		for _, p := range n.Outputs {
			nd.Outputs = append(nd.Outputs, portDoc(p))
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	for _, c := range f.connections {
		doc.Connections = append(doc.Connections, document.ConnectionDoc{
			ParentGID: c.Out.node.GlobalID,
			OutputIdx: c.Out.Index(),
			TargetGID: c.Inp.node.GlobalID,
			InputIdx:  c.Inp.Index(),
		})
	}
	return doc
}

// Load rebuilds the flow from a document. Nodes are created in document
// order. Placement (default filling plus the class place event) runs before
// the saved node state and port values are restored, so the document always
// wins over placement defaults; connections are made last, so acceptance
// checks at connect time see the saved state.
func (f *Flow) Load(doc document.FlowDoc, resolve ClassResolver) error {
	if doc.Mode != "" {
		if err := f.SetAlgorithmMode(Mode(doc.Mode)); err != nil {
			return err
		}
	}
	for _, nd := range doc.Nodes {
		class, err := resolve(nd.Identifier)
		if err != nil {
			return fmt.Errorf("resolving node class %q: %w", nd.Identifier, err)
		}
		n := newNode(class, f)
		n.GlobalID = nd.GlobalID
		n.PosX, n.PosY = nd.PosX, nd.PosY
		n.place()
		for k, v := range nd.State {
			n.State[k] = v
		}
		if err := restorePorts(n.Inputs, nd.Inputs); err != nil {
			return fmt.Errorf("restoring inputs of %q: %w", nd.Identifier, err)
		}
		if err := restorePorts(n.Outputs, nd.Outputs); err != nil {
			return fmt.Errorf("restoring outputs of %q: %w", nd.Identifier, err)
		}
		f.nodes = append(f.nodes, n)
	}
	for _, cd := range doc.Connections {
		if err := f.loadConnection(cd); err != nil {
			return err
		}
	}
	return nil
}

func (f *Flow) loadConnection(cd document.ConnectionDoc) error {
	parent, err := f.NodeByID(cd.ParentGID)
	if err != nil {
		return fmt.Errorf("connection source %s: %w", cd.ParentGID, err)
	}
	target, err := f.NodeByID(cd.TargetGID)
	if err != nil {
		return fmt.Errorf("connection target %s: %w", cd.TargetGID, err)
	}
	if cd.OutputIdx < 0 || cd.OutputIdx >= len(parent.Outputs) ||
		cd.InputIdx < 0 || cd.InputIdx >= len(target.Inputs) {
		return ErrPortOutOfRange
	}
	out := parent.Outputs[cd.OutputIdx]
	inp := target.Inputs[cd.InputIdx]
	if !f.CheckConnectionValidity(out, inp) {
		return fmt.Errorf("%w: %s[%d] -> %s[%d]", ErrInvalidConnection,
			cd.ParentGID, cd.OutputIdx, cd.TargetGID, cd.InputIdx)
	}
	f.addConnection(inp, out)
	if inp.Type == PortData {
		if err := inp.Update(out.Val); err != nil {
			return err
		}
	}
	return nil
}

func portDoc(p *Port) document.PortDoc {
	pd := document.PortDoc{
		Label: p.Label,
		Type:  string(p.Type),
		Value: p.Val,
	}
	if p.Dtype != nil {
		st := p.Dtype.GetState()
		pd.Dtype = &st
	}
	return pd
}

func restorePorts(ports []*Port, docs []document.PortDoc) error {
	if len(docs) != len(ports) {
		return ErrPortOutOfRange
	}
	for i, pd := range docs {
		p := ports[i]
		if pd.Dtype != nil {
			dt, err := dtype.FromState(*pd.Dtype)
			if err != nil {
				return err
			}
			p.Dtype = dt
		}
		if p.Type == PortData {
			p.Val = pd.Value
		}
		p.refreshReady()
	}
	return nil
}

func (f *Flow) contains(n *Node) bool {
	for _, m := range f.nodes {
		if m == n {
			return true
		}
	}
	return false
}

// connectionBetween finds the edge from out to inp, if any.
func (f *Flow) connectionBetween(inp, out *Port) *Connection {
	for _, c := range f.connections {
		if c.Inp == inp && c.Out == out {
			return c
		}
	}
	return nil
}

// connectionBetweenPair is the order-independent form.
func (f *Flow) connectionBetweenPair(p1, p2 *Port) *Connection {
	for _, c := range f.connections {
		if (c.Inp == p1 && c.Out == p2) || (c.Inp == p2 && c.Out == p1) {
			return c
		}
	}
	return nil
}

func orient(p1, p2 *Port) (inp, out *Port) {
	if p1.IO == IOInput {
		return p1, p2
	}
	return p2, p1
}

func removePortConn(conns []*Connection, c *Connection) []*Connection {
	for i, e := range conns {
		if e == c {
			return append(conns[:i], conns[i+1:]...)
		}
	}
	return conns
}
