package flow

// Connection is a directed edge from one output port to one input port.
// Connections are created by the flow after validation and removed either
// explicitly or before their endpoints' nodes are removed; the flow never
// holds a connection whose endpoints are not in the flow.
type Connection struct {
	// Out is the source output port.
	Out *Port
	// Inp is the destination input port.
	Inp *Port
}

func (c *Connection) touches(n *Node) bool {
	return c.Out.node == n || c.Inp.node == n
}
