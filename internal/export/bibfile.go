// Package export appends structured citations to existing .bib files.
package export

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/matsen/citeshelf/internal/metadata"
)

var (
	// entryStartRegex matches the opening line of an entry: @type{key,
	entryStartRegex = regexp.MustCompile(`@\w+\{([^,\s]+)\s*,`)
	// isbnNoteRegex matches note = {{ISBN} value} as written by the structured style.
	isbnNoteRegex = regexp.MustCompile(`(?i)^\s*note\s*=\s*\{\{ISBN\}\s*([0-9Xx\- ]+)\}`)
	// isbnFieldRegex matches isbn = {value} or isbn = "value".
	isbnFieldRegex = regexp.MustCompile(`(?i)^\s*isbn\s*=\s*[\{"]([^\}"]+)[\}"]`)
)

// BibIndex indexes existing .bib entries for deduplication.
type BibIndex struct {
	// Keys holds every citation key seen.
	Keys map[string]bool
	// ISBNs maps normalized ISBNs to citation keys.
	ISBNs map[string]string
}

// NewBibIndex creates an empty index.
func NewBibIndex() *BibIndex {
	return &BibIndex{
		Keys:  make(map[string]bool),
		ISBNs: make(map[string]string),
	}
}

// HasEntry reports whether an entry already exists.
// The ISBN is matched first; the citation key is the fallback.
func (idx *BibIndex) HasEntry(key, isbn string) bool {
	if n := metadata.NormalizeISBN(isbn); n != "" {
		if _, ok := idx.ISBNs[n]; ok {
			return true
		}
	}
	return idx.Keys[key]
}

// Add records an entry so later HasEntry calls see it.
func (idx *BibIndex) Add(key, isbn string) {
	idx.Keys[key] = true
	if n := metadata.NormalizeISBN(isbn); n != "" {
		idx.ISBNs[n] = key
	}
}

// ParseBibFile builds an index from an existing .bib file.
// A missing file yields an empty index.
func ParseBibFile(path string) (*BibIndex, error) {
	idx := NewBibIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var currentKey string

	for scanner.Scan() {
		line := scanner.Text()

		if m := entryStartRegex.FindStringSubmatch(line); len(m) > 1 {
			currentKey = strings.TrimSpace(m[1])
			idx.Keys[currentKey] = true
		}
		if currentKey == "" {
			continue
		}

		m := isbnNoteRegex.FindStringSubmatch(line)
		if m == nil {
			m = isbnFieldRegex.FindStringSubmatch(line)
		}
		if len(m) > 1 {
			if n := metadata.NormalizeISBN(m[1]); n != "" {
				idx.ISBNs[n] = currentKey
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return idx, nil
}

// AppendToBibFile appends entries to a .bib file, creating it if needed.
func AppendToBibFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	// Start on a fresh line even when the file lacks a trailing newline
	if _, err := file.WriteString("\n" + content + "\n"); err != nil {
		return err
	}
	return nil
}
