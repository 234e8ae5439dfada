package flow

// UpdateSignal notifies observers around node updates. Handlers run
// synchronously on the caller's stack, in registration order, and receive
// the node plus the triggering input index (-1 when the update was not
// triggered through an input).
type UpdateSignal struct {
	handlers []func(n *Node, inp int)
}

// Connect registers a handler.
func (s *UpdateSignal) Connect(h func(n *Node, inp int)) {
	s.handlers = append(s.handlers, h)
}

// Emit invokes all handlers.
func (s *UpdateSignal) Emit(n *Node, inp int) {
	for _, h := range s.handlers {
		h(n, inp)
	}
}

// BoolSignal notifies observers of a boolean outcome, e.g. the result of a
// connection validity check.
type BoolSignal struct {
	handlers []func(ok bool)
}

// Connect registers a handler.
func (s *BoolSignal) Connect(h func(ok bool)) {
	s.handlers = append(s.handlers, h)
}

// Emit invokes all handlers.
func (s *BoolSignal) Emit(ok bool) {
	for _, h := range s.handlers {
		h(ok)
	}
}
