package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyiron/nodeflow/internal/core/document"
)

const (
	gidA = "0a68c7ce-2d1f-4b7a-9c3e-5f6a7b8c9d0e"
	gidB = "1b79d8df-3e20-4c8b-8d4f-6a7b8c9d0e1f"
)

func validDoc() *document.SessionDoc {
	return &document.SessionDoc{
		ID: "d4c3b2a1-5678-4def-9abc-fedcba987654",
		Scripts: []document.ScriptDoc{{
			Title: "main",
			Flow: document.FlowDoc{
				Mode: "data",
				Nodes: []document.NodeDoc{
					{
						Identifier: "std.Val",
						GlobalID:   gidA,
						Outputs:    []document.PortDoc{{Label: "val", Type: "data"}},
					},
					{
						Identifier: "std.Display",
						GlobalID:   gidB,
						Inputs:     []document.PortDoc{{Label: "value", Type: "data"}},
					},
				},
				Connections: []document.ConnectionDoc{
					{ParentGID: gidA, OutputIdx: 0, TargetGID: gidB, InputIdx: 0},
				},
			},
		}},
	}
}

func TestValidateSessionDoc_Valid(t *testing.T) {
	assert.NoError(t, ValidateSessionDoc(validDoc()))
}

func TestValidateSessionDoc_Nil(t *testing.T) {
	assert.ErrorIs(t, ValidateSessionDoc(nil), document.ErrNilDocument)
}

func TestValidateSessionDoc_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*document.SessionDoc)
		wantHit string
	}{
		{
			name:    "missing session id",
			mutate:  func(d *document.SessionDoc) { d.ID = "" },
			wantHit: "required",
		},
		{
			name:    "untitled script",
			mutate:  func(d *document.SessionDoc) { d.Scripts[0].Title = "" },
			wantHit: "required",
		},
		{
			name:    "bogus algorithm mode",
			mutate:  func(d *document.SessionDoc) { d.Scripts[0].Flow.Mode = "lazy" },
			wantHit: "algorithm_mode",
		},
		{
			name:    "bogus port type",
			mutate:  func(d *document.SessionDoc) { d.Scripts[0].Flow.Nodes[0].Outputs[0].Type = "signal" },
			wantHit: "port_type",
		},
		{
			name:    "node id not uuid4",
			mutate:  func(d *document.SessionDoc) { d.Scripts[0].Flow.Nodes[0].GlobalID = "node-1" },
			wantHit: "uuid4",
		},
		{
			name:    "negative connection index",
			mutate:  func(d *document.SessionDoc) { d.Scripts[0].Flow.Connections[0].InputIdx = -1 },
			wantHit: "min",
		},
		{
			name:    "duplicate node global ID",
			mutate:  func(d *document.SessionDoc) { d.Scripts[0].Flow.Nodes[1].GlobalID = gidA },
			wantHit: "duplicate node global ID",
		},
		{
			name: "connection references unknown node",
			mutate: func(d *document.SessionDoc) {
				d.Scripts[0].Flow.Connections[0].TargetGID = "2c8ae9e0-4f31-4d9c-9e50-7b8c9d0e1f2a"
			},
			wantHit: "connection references unknown node",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDoc()
			tt.mutate(doc)
			err := ValidateSessionDoc(doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantHit)
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "id", Value: "", Message: "failed 'required' validation"},
		{Field: "scripts[0].flow.algorithm_mode", Value: "lazy", Message: "failed 'algorithm_mode' validation"},
	}
	msg := errs.Error()
	assert.Contains(t, msg, "field 'id'")
	assert.Contains(t, msg, "; ")
	assert.Equal(t, "no validation errors", ValidationErrors{}.Error())
}
