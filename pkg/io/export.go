package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/narrative/pkg/item"
)

// WriteItems encodes items as an indented JSON array of records.
func WriteItems(items []item.Item, w io.Writer) error {
	return WriteRecords(item.ToRecords(items), w)
}

// WriteRecords encodes records as an indented JSON array.
func WriteRecords(records []item.Record, w io.Writer) error {
	if records == nil {
		records = []item.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportItems writes items to a JSON file at path.
func ExportItems(items []item.Item, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteItems(items, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
