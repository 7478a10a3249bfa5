package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/narrative/pkg/narrative"
)

// =============================================================================
// Result Serialization API
// =============================================================================

// MarshalResult converts a result to indented JSON bytes.
func MarshalResult(r *narrative.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeResultTo(r, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalResult decodes JSON bytes into a result.
func UnmarshalResult(data []byte) (*narrative.Result, error) {
	return readResultFrom(bytes.NewReader(data))
}

// WriteResult writes a result as JSON to w.
func WriteResult(r *narrative.Result, w io.Writer) error {
	return writeResultTo(r, w)
}

// ReadResult decodes a JSON result from r.
func ReadResult(r io.Reader) (*narrative.Result, error) {
	return readResultFrom(r)
}

// WriteResultFile writes a result to a JSON file.
func WriteResultFile(r *narrative.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeResultTo(r, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadResultFile reads a result from a JSON file.
func ReadResultFile(path string) (*narrative.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readResultFrom(f)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeResultTo(r *narrative.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromResult(r)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readResultFrom(r io.Reader) (*narrative.Result, error) {
	var data Result
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToResult(data)
}
