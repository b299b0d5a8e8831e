package citation

import (
	"fmt"
	"strings"

	"github.com/matsen/citeshelf/internal/metadata"
)

// EntrySeparator separates consecutive citations in batch output.
const EntrySeparator = "\n\n"

// Accessor supplies the metadata record for a library identifier.
type Accessor interface {
	Metadata(id string) (metadata.Record, error)
}

// AccessorFunc adapts a plain function to the Accessor interface.
type AccessorFunc func(id string) (metadata.Record, error)

// Metadata calls f(id).
func (f AccessorFunc) Metadata(id string) (metadata.Record, error) {
	return f(id)
}

// Entry is the rendered citation of one record in a batch.
type Entry struct {
	ID string `json:"id"`
	Result
}

// FormatBatchResults renders each id in caller order.
// Accessor errors are returned unchanged. An empty id list yields no entries.
func FormatBatchResults(ids []string, style Style, opts Options, acc Accessor) ([]Entry, error) {
	if !style.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStyle, style)
	}

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		rec, err := acc.Metadata(id)
		if err != nil {
			return nil, err
		}
		res, err := Format(rec, style, opts)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{ID: id, Result: res})
	}
	return entries, nil
}

// FormatBatch renders each id in caller order and joins the citations with
// one blank line. anyMissing is true if any record had a missing field.
// An empty id list yields ("", false, nil).
func FormatBatch(ids []string, style Style, opts Options, acc Accessor) (text string, anyMissing bool, err error) {
	entries, err := FormatBatchResults(ids, style, opts, acc)
	if err != nil {
		return "", false, err
	}
	text, anyMissing = Join(entries)
	return text, anyMissing, nil
}

// Join concatenates entry texts with EntrySeparator and ORs their flags.
func Join(entries []Entry) (string, bool) {
	texts := make([]string, len(entries))
	anyMissing := false
	for i, e := range entries {
		texts[i] = e.Text
		anyMissing = anyMissing || e.HasMissingField
	}
	return strings.Join(texts, EntrySeparator), anyMissing
}
