// Package importer provides functions to import library records from external formats.
package importer

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/matsen/citeshelf/internal/metadata"
)

// calibreAuthorSep joins multiple names in calibre's author and author_sort fields.
const calibreAuthorSep = " & "

// calibreUndefinedYear is the year calibre stores for an unset publication date.
const calibreUndefinedYear = 101

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// NameList unmarshals from either a calibre " & "-joined string or a JSON array.
type NameList []string

func (n *NameList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = nil
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*n = list
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cannot unmarshal %s into NameList", string(data))
	}
	*n = splitNames(s)
	return nil
}

// splitNames splits a " & "-joined name string, dropping blank parts.
func splitNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, calibreAuthorSep) {
		if strings.TrimSpace(part) != "" {
			names = append(names, part)
		}
	}
	return names
}

// CalibreEntry is one element of `calibredb list --for-machine` output.
type CalibreEntry struct {
	ID          FlexibleString    `json:"id"`
	Title       string            `json:"title"`
	Authors     NameList          `json:"authors"`
	AuthorSort  NameList          `json:"author_sort"`
	Publisher   string            `json:"publisher"`
	PubDate     string            `json:"pubdate"`
	ISBN        string            `json:"isbn"`
	Identifiers map[string]string `json:"identifiers"`
	Formats     []string          `json:"formats"`
}

// ParseCalibre parses calibredb JSON output and returns library records.
// Entries that cannot be converted are reported without stopping the import.
func ParseCalibre(data []byte) ([]metadata.Record, []error) {
	var entries []CalibreEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, []error{fmt.Errorf("parsing calibre JSON: %w", err)}
	}

	var recs []metadata.Record
	var errs []error

	for i, entry := range entries {
		rec, err := calibreEntryToRecord(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i+1, entry.ID, err))
			continue
		}
		recs = append(recs, rec)
	}

	return recs, errs
}

// calibreEntryToRecord converts a calibre entry to a library record.
// Only the id is required; every bibliographic field may be absent.
func calibreEntryToRecord(entry CalibreEntry) (metadata.Record, error) {
	id := strings.TrimSpace(entry.ID.String())
	if id == "" {
		return metadata.Record{}, fmt.Errorf("missing required field 'id'")
	}

	published, err := parseCalibreDate(entry.PubDate)
	if err != nil {
		return metadata.Record{}, err
	}

	isbn := entry.ISBN
	if isbn == "" {
		isbn = entry.Identifiers["isbn"]
	}

	rec := metadata.Record{
		ID:         id,
		Title:      metadata.OptionalString(entry.Title),
		Authors:    metadata.Authors(entry.Authors),
		AuthorSort: authorSortMap(entry.Authors, entry.AuthorSort),
		Publisher:  metadata.OptionalString(entry.Publisher),
		Published:  published,
		ISBN:       metadata.OptionalString(isbn),
		PDFPath:    firstPDF(entry.Formats),
		Source: metadata.ImportSource{
			Type: "calibre",
			ID:   id,
		},
	}

	return rec, nil
}

// authorSortMap pairs each author with its sort name. Calibre stores the sort
// names as one joined string; when the counts disagree the pairing is
// ambiguous and no mapping is built.
func authorSortMap(authors, sorts []string) map[string]string {
	if len(authors) == 0 || len(authors) != len(sorts) {
		return nil
	}
	m := make(map[string]string, len(authors))
	for i, a := range authors {
		if s := strings.TrimSpace(sorts[i]); s != "" {
			m[a] = s
		}
	}
	return m
}

// parseCalibreDate parses an RFC 3339 pubdate. Blank and undefined dates are absent.
func parseCalibreDate(s string) (metadata.Optional[metadata.PublicationDate], error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" {
		return metadata.None[metadata.PublicationDate](), nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// Some exports drop the time component
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return metadata.None[metadata.PublicationDate](), fmt.Errorf("invalid pubdate: %s", s)
		}
	}

	if t.Year() <= calibreUndefinedYear {
		return metadata.None[metadata.PublicationDate](), nil
	}
	return metadata.Some(metadata.PublicationDate{
		Year:  t.Year(),
		Month: int(t.Month()),
		Day:   t.Day(),
	}), nil
}

// firstPDF returns the first PDF among a book's format files.
func firstPDF(formats []string) string {
	for _, f := range formats {
		if strings.EqualFold(filepath.Ext(f), ".pdf") {
			return f
		}
	}
	return ""
}
