// Package citation renders library metadata into citation text.
//
// Two styles are supported: a prose author-year citation (APA-like) and a
// keyed structured entry (BibTeX-like). Formatting is a pure function of the
// record, style, and options; absent fields never fail the render and are
// reported through Result.HasMissingField instead.
package citation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/citeshelf/internal/metadata"
)

// ErrInvalidStyle is returned for a style selector that is not recognized.
var ErrInvalidStyle = errors.New("invalid citation style")

// MissingISBN is rendered in place of an ISBN that must be shown but is absent.
const MissingISBN = "unavailable"

// Style selects the citation format.
type Style int

const (
	StyleProse Style = iota + 1
	StyleStructured
)

// String returns the canonical name of the style.
func (s Style) String() string {
	switch s {
	case StyleProse:
		return "prose"
	case StyleStructured:
		return "structured"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// Label returns the short label used in result headings (APA, BIB).
func (s Style) Label() string {
	switch s {
	case StyleProse:
		return "APA"
	case StyleStructured:
		return "BIB"
	default:
		return s.String()
	}
}

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	return s == StyleProse || s == StyleStructured
}

// ParseStyle converts a user-facing style name to a Style.
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "prose", "apa":
		return StyleProse, nil
	case "structured", "bib", "bibtex":
		return StyleStructured, nil
	default:
		return 0, fmt.Errorf("%w: %q (valid: prose, structured)", ErrInvalidStyle, name)
	}
}

// Options controls optional parts of the rendered citation.
type Options struct {
	ShowISBN        bool // Include the ISBN at all
	SkipMissingISBN bool // An absent ISBN is silently omitted and not flagged
	EscapeLaTeX     bool // Escape LaTeX specials in structured title and publisher
}

// includeISBN reports whether the ISBN segment is rendered.
func (o Options) includeISBN(isbn metadata.Optional[string]) bool {
	return o.ShowISBN && (isbn.IsPresent() || !o.SkipMissingISBN)
}

// Result is a rendered citation.
type Result struct {
	Text            string `json:"text"`
	HasMissingField bool   `json:"has_missing_field"`
}

// Format renders a single record in the given style.
func Format(rec metadata.Record, style Style, opts Options) (Result, error) {
	switch style {
	case StyleProse:
		return formatProse(rec, opts), nil
	case StyleStructured:
		return formatStructured(rec, opts), nil
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidStyle, style)
	}
}

// hasMissingField applies the missing-field rule shared by both styles.
// authors is the joined author clause of the style being rendered.
func hasMissingField(rec metadata.Record, authors string, opts Options) bool {
	if !rec.Title.IsPresent() || authors == "" || !rec.Publisher.IsPresent() || !rec.Published.IsPresent() {
		return true
	}
	return !rec.ISBN.IsPresent() && opts.ShowISBN && !opts.SkipMissingISBN
}

// year returns the four-digit year, or "" when the date is absent.
func year(rec metadata.Record) string {
	if d, ok := rec.Published.Get(); ok {
		return d.YearString()
	}
	return ""
}
