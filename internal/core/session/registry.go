package session

import (
	"github.com/pyiron/nodeflow/internal/core/flow"
)

// Registry maps class identifiers (group.title) to node classes. It is an
// explicit object owned by a session, not process-wide state; independent
// sessions may carry independent registries.
type Registry struct {
	classes map[string]*flow.NodeClass
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{classes: map[string]*flow.NodeClass{}}
}

// Register adds a class under the given group. The registry stores its own
// copy carrying the group, so the caller's class value is never mutated and
// one class value may be registered under several groups. Registering the
// same identifier again replaces the class for future instantiation; node
// instances already placed keep the class they were created with.
func (r *Registry) Register(class *flow.NodeClass, group string) error {
	if class == nil {
		return flow.ErrNilClass
	}
	if class.Title == "" {
		return ErrInvalidClassTitle
	}
	c := *class
	c.Group = group
	key := c.Identifier()
	if _, exists := r.classes[key]; !exists {
		r.order = append(r.order, key)
	}
	r.classes[key] = &c
	return nil
}

// Resolve looks a class up by identifier.
func (r *Registry) Resolve(identifier string) (*flow.NodeClass, error) {
	class, ok := r.classes[identifier]
	if !ok {
		return nil, ErrUnknownNodeClass
	}
	return class, nil
}

// Classes returns all registered classes in registration order.
func (r *Registry) Classes() []*flow.NodeClass {
	out := make([]*flow.NodeClass, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.classes[key])
	}
	return out
}
