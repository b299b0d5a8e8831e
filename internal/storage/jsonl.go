// Package storage handles library persistence in JSONL and SQLite formats.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/citeshelf/internal/metadata"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// RecordWithAction pairs a record with an import action.
type RecordWithAction struct {
	Record      metadata.Record
	Action      string // import, update
	ExistingIdx int    // Index in existing records (for updates)
}

// ReadAll reads all records from a JSONL file.
// A missing file yields no records.
func ReadAll(path string) ([]metadata.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening library file: %w", err)
	}
	defer f.Close()

	var recs []metadata.Record
	scanner := bufio.NewScanner(f)

	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec metadata.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		recs = append(recs, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading library file: %w", err)
	}

	return recs, nil
}

// Append adds a record to the end of a JSONL file.
func Append(path string, rec metadata.Record) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening library file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}

// WriteAll writes all records to a JSONL file, replacing existing content.
func WriteAll(path string, recs []metadata.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating library file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, rec := range recs {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing library file: %w", err)
	}
	return nil
}

// FindByID searches for a record by ID.
func FindByID(recs []metadata.Record, id string) (int, bool) {
	for i, rec := range recs {
		if rec.ID == id {
			return i, true
		}
	}
	return -1, false
}

// FindByISBN searches for a record by ISBN, ignoring hyphens and spaces.
func FindByISBN(recs []metadata.Record, isbn string) (int, bool) {
	want := metadata.NormalizeISBN(isbn)
	if want == "" {
		return -1, false
	}
	for i, rec := range recs {
		if v, ok := rec.ISBN.Get(); ok && metadata.NormalizeISBN(v) == want {
			return i, true
		}
	}
	return -1, false
}

// GenerateUniqueID returns an ID that doesn't conflict with existing records.
// If the base ID exists, appends -2, -3, etc.
func GenerateUniqueID(recs []metadata.Record, baseID string) string {
	if _, found := FindByID(recs, baseID); !found {
		return baseID
	}

	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", baseID, i)
		if _, found := FindByID(recs, candidate); !found {
			return candidate
		}
	}
}
