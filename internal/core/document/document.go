// Package document provides the serialized form of sessions, flows, nodes
// and ports, plus the store interface persistence adapters implement.
// Round-trip fidelity is the contract: serialize, load, serialize again
// must yield an equivalent document.
package document

import (
	"time"

	"github.com/pyiron/nodeflow/internal/core/dtype"
)

// SessionDoc is the top-level persisted layout: a list of scripts.
type SessionDoc struct {
	ID      string      `json:"id" msgpack:"id" validate:"required"`
	Scripts []ScriptDoc `json:"scripts" msgpack:"scripts" validate:"dive"`
	SavedAt time.Time   `json:"saved_at" msgpack:"saved_at"`
	Version string      `json:"version,omitempty" msgpack:"version,omitempty"`
}

// ScriptDoc is one titled flow.
type ScriptDoc struct {
	Title string  `json:"title" msgpack:"title" validate:"required"`
	Flow  FlowDoc `json:"flow" msgpack:"flow"`
}

// FlowDoc captures a flow's node and connection lists. Node order matters:
// loading creates nodes in document order so order-dependent identifier
// allocation stays externally reproducible.
type FlowDoc struct {
	Mode        string          `json:"algorithm_mode" msgpack:"algorithm_mode" validate:"required,algorithm_mode"`
	Nodes       []NodeDoc       `json:"nodes" msgpack:"nodes" validate:"dive"`
	Connections []ConnectionDoc `json:"connections" msgpack:"connections" validate:"dive"`
}

// NodeDoc captures one node instance: class identity, stable global ID,
// host position passthrough and per-port state.
type NodeDoc struct {
	Identifier string         `json:"identifier" msgpack:"identifier" validate:"required"`
	GlobalID   string         `json:"global_id" msgpack:"global_id" validate:"required,uuid4"`
	PosX       float64        `json:"pos_x" msgpack:"pos_x"`
	PosY       float64        `json:"pos_y" msgpack:"pos_y"`
	State      map[string]any `json:"state,omitempty" msgpack:"state,omitempty"`
	Inputs     []PortDoc      `json:"inputs" msgpack:"inputs" validate:"dive"`
	Outputs    []PortDoc      `json:"outputs" msgpack:"outputs" validate:"dive"`
}

// PortDoc captures one port: its current value and its dtype state. Dtype
// state is restored before connections so acceptance checks at connect time
// see the saved state, not class defaults.
type PortDoc struct {
	Label string       `json:"label" msgpack:"label"`
	Type  string       `json:"type" msgpack:"type" validate:"required,port_type"`
	Value any          `json:"value,omitempty" msgpack:"value,omitempty"`
	Dtype *dtype.State `json:"dtype,omitempty" msgpack:"dtype,omitempty"`
}

// ConnectionDoc addresses both endpoints by (node global ID, port index).
type ConnectionDoc struct {
	ParentGID string `json:"parent_gid" msgpack:"parent_gid" validate:"required,uuid4"`
	OutputIdx int    `json:"output_idx" msgpack:"output_idx" validate:"min=0"`
	TargetGID string `json:"target_gid" msgpack:"target_gid" validate:"required,uuid4"`
	InputIdx  int    `json:"input_idx" msgpack:"input_idx" validate:"min=0"`
}
