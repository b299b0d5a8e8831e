package importer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matsen/citeshelf/internal/metadata"
)

// ParseRecords parses a JSON array of native library records.
func ParseRecords(data []byte) ([]metadata.Record, []error) {
	var recs []metadata.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, []error{fmt.Errorf("parsing records JSON: %w", err)}
	}

	var valid []metadata.Record
	var errs []error
	for i, rec := range recs {
		if strings.TrimSpace(rec.ID) == "" {
			errs = append(errs, fmt.Errorf("entry %d: missing required field 'id'", i+1))
			continue
		}
		if rec.Source.Type == "" {
			rec.Source = metadata.ImportSource{Type: "records", ID: rec.ID}
		}
		valid = append(valid, rec)
	}
	return valid, errs
}

// ParseFormat dispatches on an import format name.
func ParseFormat(format string, data []byte) ([]metadata.Record, []error, error) {
	switch format {
	case "calibre":
		recs, errs := ParseCalibre(data)
		return recs, errs, nil
	case "records":
		recs, errs := ParseRecords(data)
		return recs, errs, nil
	default:
		return nil, nil, fmt.Errorf("unknown format: %s (valid: calibre, records)", format)
	}
}
