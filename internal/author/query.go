// Package author parses author search queries and matches them against
// record author names.
package author

import (
	"strings"

	"github.com/matsen/citeshelf/internal/metadata"
)

// Name is an author split into first and last parts.
type Name struct {
	First string
	Last  string
}

// SplitName splits an author using the sort form ("Last, First") when it has
// one, else treats the final word of the display form as the last name.
func SplitName(display, sort string) Name {
	if idx := strings.Index(sort, ","); idx > 0 {
		return Name{
			First: strings.TrimSpace(sort[idx+1:]),
			Last:  strings.TrimSpace(sort[:idx]),
		}
	}
	q := ParseQuery(display)
	return Name{First: q.First, Last: q.Last}
}

// Query represents a parsed author search query.
type Query struct {
	First string // First name (may be empty for last-name-only queries)
	Last  string // Last name (required)
}

// ParseQuery parses an author search string into a structured Query.
//
// Supported formats:
//   - "Herbert"          → last="Herbert"
//   - "Frank Herbert"    → first="Frank", last="Herbert"
//   - "Herbert, Frank"   → first="Frank", last="Herbert"
//
// Names are trimmed but case is preserved (matching is case-insensitive).
func ParseQuery(input string) Query {
	input = strings.TrimSpace(input)
	if input == "" {
		return Query{}
	}

	if idx := strings.Index(input, ","); idx > 0 {
		return Query{
			First: strings.TrimSpace(input[idx+1:]),
			Last:  strings.TrimSpace(input[:idx]),
		}
	}

	parts := strings.Fields(input)
	if len(parts) == 1 {
		return Query{Last: parts[0]}
	}

	// "Ursula K Le Guin" → first="Ursula K Le", last="Guin"; Matches also
	// tries the whole query as a multi-word last name.
	return Query{
		First: strings.Join(parts[:len(parts)-1], " "),
		Last:  parts[len(parts)-1],
	}
}

// IsEmpty reports whether the query has no name to match.
func (q Query) IsEmpty() bool {
	return q.Last == ""
}

// Matches checks if the query matches a name.
//
// The last name must match exactly, ignoring case; a first name in the query
// is a case-insensitive prefix. "Frank Herb" therefore does not match
// Herbert, and "Herbert" does not match "Herberts".
func (q Query) Matches(n Name) bool {
	if q.First != "" && strings.EqualFold(q.First+" "+q.Last, n.Last) {
		return true
	}
	if !strings.EqualFold(q.Last, n.Last) {
		return false
	}
	if q.First == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(n.First), strings.ToLower(q.First))
}

// MatchesRecord checks if the query matches any author of rec.
func (q Query) MatchesRecord(rec metadata.Record) bool {
	for _, a := range rec.Authors {
		if q.Matches(SplitName(a, rec.AuthorSort[a])) {
			return true
		}
	}
	return false
}

// Filter returns records matched by q, in order, up to limit (limit <= 0 means all).
func Filter(recs []metadata.Record, q Query, limit int) []metadata.Record {
	var out []metadata.Record
	for _, rec := range recs {
		if limit > 0 && len(out) >= limit {
			break
		}
		if q.MatchesRecord(rec) {
			out = append(out, rec)
		}
	}
	return out
}
