// Package serialization turns session documents into bytes and back:
// a codec (JSON or MessagePack) wrapped in optional compression. Used by
// the persistence adapters and the CLI for on-disk session files.
package serialization

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes and decodes a value.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
}

// Compression selects the compression layer applied after encoding.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Marshaler is the encode+compress pipeline.
type Marshaler struct {
	codec       Codec
	compression Compression
}

// NewMarshaler builds a marshaler from a codec and a compression choice.
func NewMarshaler(codec Codec, compression Compression) *Marshaler {
	return &Marshaler{codec: codec, compression: compression}
}

// Default returns the marshaler used when nothing is configured:
// MessagePack with zstd compression.
func Default() *Marshaler {
	return NewMarshaler(MsgPackCodec{}, CompressionZstd)
}

// CodecName reports the underlying codec.
func (m *Marshaler) CodecName() string { return m.codec.Name() }

// Marshal encodes and compresses v.
func (m *Marshaler) Marshal(v any) ([]byte, error) {
	data, err := m.codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("codec encoding failed: %w", err)
	}
	data, err = m.compress(data)
	if err != nil {
		return nil, fmt.Errorf("compression failed: %w", err)
	}
	return data, nil
}

// Unmarshal decompresses and decodes data into v.
func (m *Marshaler) Unmarshal(data []byte, v any) error {
	data, err := m.decompress(data)
	if err != nil {
		return fmt.Errorf("decompression failed: %w", err)
	}
	if err := m.codec.Decode(data, v); err != nil {
		return fmt.Errorf("codec decoding failed: %w", err)
	}
	return nil
}

func (m *Marshaler) compress(data []byte) ([]byte, error) {
	switch m.compression {
	case CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	default:
		return data, nil
	}
}

func (m *Marshaler) decompress(data []byte) ([]byte, error) {
	switch m.compression {
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	default:
		return data, nil
	}
}

// JSONCodec encodes documents as JSON, the readable interchange format.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error)    { return json.Marshal(v) }
func (JSONCodec) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSONCodec) Name() string                    { return "json" }

// MsgPackCodec encodes documents as MessagePack, the compact default.
type MsgPackCodec struct{}

func (MsgPackCodec) Encode(v any) ([]byte, error)    { return msgpack.Marshal(v) }
func (MsgPackCodec) Decode(data []byte, v any) error { return msgpack.Unmarshal(data, v) }
func (MsgPackCodec) Name() string                    { return "msgpack" }
