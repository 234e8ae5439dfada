package serialization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyiron/nodeflow/internal/core/document"
)

func sampleDoc() *document.SessionDoc {
	return &document.SessionDoc{
		ID:      "6f1f9e9a-6a3e-4f4e-9c6b-2d4b8f0a1c2d",
		Version: "1",
		SavedAt: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
		Scripts: []document.ScriptDoc{{
			Title: "main",
			Flow: document.FlowDoc{
				Mode: "data",
				Nodes: []document.NodeDoc{{
					Identifier: "std.Val",
					GlobalID:   "a2b4c6d8-1234-4abc-8def-0123456789ab",
					PosX:       1.5,
					Inputs: []document.PortDoc{{
						Label: "val",
						Type:  "data",
						Value: 3.5,
					}},
					Outputs: []document.PortDoc{{Label: "val", Type: "data"}},
				}},
			},
		}},
	}
}

func TestMarshaler_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		m    *Marshaler
	}{
		{name: "msgpack zstd", m: Default()},
		{name: "msgpack gzip", m: NewMarshaler(MsgPackCodec{}, CompressionGzip)},
		{name: "msgpack plain", m: NewMarshaler(MsgPackCodec{}, CompressionNone)},
		{name: "json plain", m: NewMarshaler(JSONCodec{}, CompressionNone)},
		{name: "json zstd", m: NewMarshaler(JSONCodec{}, CompressionZstd)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sampleDoc()
			data, err := tt.m.Marshal(doc)
			require.NoError(t, err)
			require.NotEmpty(t, data)

			var got document.SessionDoc
			require.NoError(t, tt.m.Unmarshal(data, &got))

			assert.Equal(t, doc.ID, got.ID)
			require.Len(t, got.Scripts, 1)
			assert.Equal(t, "main", got.Scripts[0].Title)
			require.Len(t, got.Scripts[0].Flow.Nodes, 1)
			assert.Equal(t, 3.5, got.Scripts[0].Flow.Nodes[0].Inputs[0].Value)
		})
	}
}

func TestMarshaler_CompressionShrinksRepetitiveDocs(t *testing.T) {
	doc := sampleDoc()
	for i := 0; i < 200; i++ {
		doc.Scripts[0].Flow.Nodes = append(doc.Scripts[0].Flow.Nodes, doc.Scripts[0].Flow.Nodes[0])
	}

	plain, err := NewMarshaler(JSONCodec{}, CompressionNone).Marshal(doc)
	require.NoError(t, err)
	packed, err := NewMarshaler(JSONCodec{}, CompressionZstd).Marshal(doc)
	require.NoError(t, err)

	assert.Less(t, len(packed), len(plain))
}

func TestMarshaler_UnmarshalGarbage(t *testing.T) {
	var doc document.SessionDoc
	assert.Error(t, Default().Unmarshal([]byte("not zstd"), &doc))
	assert.Error(t, NewMarshaler(JSONCodec{}, CompressionNone).Unmarshal([]byte("{"), &doc))
}

func TestCodec_Names(t *testing.T) {
	assert.Equal(t, "json", JSONCodec{}.Name())
	assert.Equal(t, "msgpack", MsgPackCodec{}.Name())
	assert.Equal(t, "msgpack", Default().CodecName())
}
