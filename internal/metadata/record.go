// Package metadata defines the bibliographic record read from a library.
package metadata

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is the metadata of a single library entry.
// Every bibliographic field may be absent.
type Record struct {
	ID string `json:"id"` // Library identifier, also used as the citation key

	Title      Optional[string]          `json:"title"`
	Authors    Authors                   `json:"authors"`     // Display form, in credit order
	AuthorSort map[string]string         `json:"author_sort"` // Display form -> sort form ("Last, First")
	Publisher  Optional[string]          `json:"publisher"`
	Published  Optional[PublicationDate] `json:"published"`
	ISBN       Optional[string]          `json:"isbn"`

	// Path of the book's PDF: absolute, or relative to the configured PDF root.
	PDFPath string `json:"pdf_path,omitempty"`

	Source ImportSource `json:"source"`
}

// PublicationDate is a publication date with optional month and day.
type PublicationDate struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"` // 1-12, 0 if unknown
	Day   int `json:"day,omitempty"`   // 1-31, 0 if unknown
}

// YearString returns the year as four digits.
func (d PublicationDate) YearString() string {
	return fmt.Sprintf("%04d", d.Year)
}

// ImportSource tracks where a record was imported from.
type ImportSource struct {
	Type string `json:"type"` // calibre, records, manual
	ID   string `json:"id"`   // Original ID in the source system
}

// SortName returns the sort form of an author, falling back to the
// display form when no sort mapping exists.
func (r Record) SortName(author string) string {
	if s, ok := r.AuthorSort[author]; ok && s != "" {
		return s
	}
	return author
}

// Authors is an ordered list of author display names.
// It decodes from either a JSON array or a single JSON string.
type Authors []string

// UnmarshalJSON accepts null, a string, or an array of strings.
func (a *Authors) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = nil
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("authors must be a string or a list of strings: %s", string(data))
	}
	*a = AuthorsFromString(single)
	return nil
}

// AuthorsFromString normalizes a single author string into a list.
// A blank string yields no authors.
func AuthorsFromString(s string) Authors {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return Authors{s}
}

// OptionalString returns None for a blank string and Some otherwise.
func OptionalString(s string) Optional[string] {
	s = strings.TrimSpace(s)
	if s == "" {
		return None[string]()
	}
	return Some(s)
}
