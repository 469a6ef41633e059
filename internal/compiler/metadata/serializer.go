// Package metadata encodes compiled schemas into the model artifact that
// carries them from the schema compiler to the instance compiler.
//
// The artifact is a small frame around a msgpack payload:
//
//	"TENM" | version (1 byte) | flags (1 byte) | length (uint32, big endian) | payload
//
// Flag bit 0 marks a zstd compressed payload.
package metadata

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/ugorji/go/codec"

	"github.com/traitenum/traitenum/internal/model"
)

const (
	// Magic opens every model artifact.
	Magic = "TENM"
	// Version is the frame layout version written by Serialize.
	Version byte = 1

	flagCompressed byte = 1 << 0
	headerSize          = len(Magic) + 2 + 4
)

// Options controls how a model is written.
type Options struct {
	Compress bool
}

var (
	msgpack codec.MsgpackHandle

	// Both are safe for concurrent EncodeAll/DecodeAll.
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	decoder, _ = zstd.NewReader(nil)
)

func init() {
	msgpack.Canonical = true
}

// Serialize encodes a schema into a model artifact.
// The output is deterministic - same input will always produce the same output.
func Serialize(schema *model.Schema, opts Options) ([]byte, error) {
	if schema == nil {
		return nil, fmt.Errorf("schema cannot be nil")
	}

	var payload []byte
	if err := codec.NewEncoderBytes(&payload, &msgpack).Encode(schema); err != nil {
		return nil, fmt.Errorf("failed to encode schema %s: %w", schema.Identifier, err)
	}

	var flags byte
	if opts.Compress {
		payload = Compress(payload)
		flags |= flagCompressed
	}

	var buf bytes.Buffer
	buf.Grow(headerSize + len(payload))
	buf.WriteString(Magic)
	buf.WriteByte(Version)
	buf.WriteByte(flags)
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(payload)))
	buf.Write(length[:])
	buf.Write(payload)

	return buf.Bytes(), nil
}

// Deserialize decodes a model artifact produced by Serialize.
func Deserialize(data []byte) (*model.Schema, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("model artifact truncated: %d bytes", len(data))
	}
	if string(data[:len(Magic)]) != Magic {
		return nil, fmt.Errorf("not a model artifact: bad magic %q", data[:len(Magic)])
	}
	if v := data[len(Magic)]; v != Version {
		return nil, fmt.Errorf("unsupported model artifact version %d", v)
	}
	flags := data[len(Magic)+1]
	length := binary.BigEndian.Uint32(data[len(Magic)+2 : headerSize])
	payload := data[headerSize:]
	if uint32(len(payload)) != length {
		return nil, fmt.Errorf("model artifact length mismatch: header says %d, got %d", length, len(payload))
	}

	if flags&flagCompressed != 0 {
		decompressed, err := Decompress(payload)
		if err != nil {
			return nil, err
		}
		payload = decompressed
	}

	schema := &model.Schema{}
	if err := codec.NewDecoderBytes(payload, &msgpack).Decode(schema); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	schema.Normalize()

	return schema, nil
}

// Compress compresses data with zstd.
func Compress(data []byte) []byte {
	return encoder.EncodeAll(data, make([]byte, 0, len(data)))
}

// Decompress decompresses zstd data.
func Decompress(data []byte) ([]byte, error) {
	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress model: %w", err)
	}
	return out, nil
}

// WriteToFile serializes schema to outputPath, creating parent directories.
func WriteToFile(schema *model.Schema, outputPath string, opts Options) error {
	if outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	data, err := Serialize(schema, opts)
	if err != nil {
		return err
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model to %s: %w", outputPath, err)
	}

	return nil
}

// ReadFromFile loads a model artifact written by WriteToFile.
func ReadFromFile(path string) (*model.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", path, err)
	}
	schema, err := Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return schema, nil
}
