package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/item"
)

// ReadRecords decodes records from r, accepting either a JSON array or
// JSON Lines. Blank lines in JSON Lines input are skipped. ReadRecords does
// not close r.
func ReadRecords(r io.Reader) ([]item.Record, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return []item.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	if first == '[' {
		var records []item.Record
		if err := json.NewDecoder(br).Decode(&records); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode record array")
		}
		return records, nil
	}

	records := []item.Record{}
	dec := json.NewDecoder(br)
	for {
		var rec item.Record
		err := dec.Decode(&rec)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode record %d", len(records))
		}
		records = append(records, rec)
	}
}

// ReadItems decodes records from r and converts them to items. It returns
// an INVALID_INPUT error naming the first record whose timestamp cannot be
// parsed.
func ReadItems(r io.Reader) ([]item.Item, error) {
	records, err := ReadRecords(r)
	if err != nil {
		return nil, err
	}
	return item.FromRecords(records)
}

// ImportRecords reads the records of the file at path.
func ImportRecords(path string) ([]item.Record, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "open %s", path)
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ImportItems reads the file at path and returns its items.
func ImportItems(path string) ([]item.Item, error) {
	records, err := ImportRecords(path)
	if err != nil {
		return nil, err
	}
	items, err := item.FromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// peekNonSpace returns the first byte that is not white space and leaves
// it unread.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
