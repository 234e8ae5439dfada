// Package session provides the top-level owner of flows: a session holds an
// ordered list of scripts (titled flows) plus the registry of known node
// classes, and round-trips everything through session documents.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pyiron/nodeflow/internal/core/document"
	"github.com/pyiron/nodeflow/internal/core/flow"
)

// Script is one titled flow inside a session.
type Script struct {
	Title string
	Flow  *flow.Flow
}

// Session owns scripts and the node-class registry. Sessions share no state
// with each other; multiple sessions (and their flows) may be driven from
// independent goroutines as long as each flow stays on one.
type Session struct {
	ID       string
	registry *Registry
	scripts  []*Script
}

// New creates an empty session with its own registry.
func New() *Session {
	return &Session{
		ID:       uuid.NewString(),
		registry: NewRegistry(),
	}
}

// Registry returns the session's node-class registry.
func (s *Session) Registry() *Registry { return s.registry }

// RegisterNodeClass registers a class under a group in the session registry.
func (s *Session) RegisterNodeClass(class *flow.NodeClass, group string) error {
	return s.registry.Register(class, group)
}

// CreateScript creates a new, empty script. An empty title is replaced with
// a generated one; titles must be unique within the session.
func (s *Session) CreateScript(title string) (*Script, error) {
	if title == "" {
		title = fmt.Sprintf("script_%d", len(s.scripts))
	}
	for _, sc := range s.scripts {
		if sc.Title == title {
			return nil, ErrDuplicateScript
		}
	}
	sc := &Script{Title: title, Flow: flow.New()}
	s.scripts = append(s.scripts, sc)
	return sc, nil
}

// DeleteScript removes a script and its flow from the session.
func (s *Session) DeleteScript(sc *Script) error {
	for i, e := range s.scripts {
		if e == sc {
			s.scripts = append(s.scripts[:i], s.scripts[i+1:]...)
			return nil
		}
	}
	return ErrScriptNotFound
}

// Scripts returns the scripts in creation order. The slice is a copy.
func (s *Session) Scripts() []*Script {
	out := make([]*Script, len(s.scripts))
	copy(out, s.scripts)
	return out
}

// Script looks a script up by title.
func (s *Session) Script(title string) (*Script, error) {
	for _, sc := range s.scripts {
		if sc.Title == title {
			return sc, nil
		}
	}
	return nil, ErrScriptNotFound
}

// Data serializes the whole session into its document form.
func (s *Session) Data() *document.SessionDoc {
	doc := &document.SessionDoc{
		ID:      s.ID,
		SavedAt: time.Now().UTC(),
		Version: "1",
	}
	for _, sc := range s.scripts {
		doc.Scripts = append(doc.Scripts, document.ScriptDoc{
			Title: sc.Title,
			Flow:  sc.Flow.Data(),
		})
	}
	return doc
}

// Load rebuilds scripts from a document, resolving node classes against the
// session registry. Scripts are created in document order.
func (s *Session) Load(doc *document.SessionDoc) error {
	if doc == nil {
		return document.ErrNilDocument
	}
	if doc.ID != "" {
		s.ID = doc.ID
	}
	for _, sd := range doc.Scripts {
		sc, err := s.CreateScript(sd.Title)
		if err != nil {
			return err
		}
		if err := sc.Flow.Load(sd.Flow, s.registry.Resolve); err != nil {
			return fmt.Errorf("loading script %q: %w", sd.Title, err)
		}
	}
	return nil
}
