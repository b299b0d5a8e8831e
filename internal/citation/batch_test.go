package citation

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/matsen/citeshelf/internal/metadata"
)

// mapAccessor serves records from a map keyed by ID.
type mapAccessor map[string]metadata.Record

func (m mapAccessor) Metadata(id string) (metadata.Record, error) {
	rec, ok := m[id]
	if !ok {
		return metadata.Record{}, fmt.Errorf("unknown id %s", id)
	}
	return rec, nil
}

func testLibrary() mapAccessor {
	complete := duneRecord()

	noPublisher := duneRecord()
	noPublisher.ID = "nopub"
	noPublisher.Title = metadata.Some("Children of Dune")
	noPublisher.Publisher = metadata.None[string]()

	second := duneRecord()
	second.ID = "messiah"
	second.Title = metadata.Some("Dune Messiah")
	second.Published = metadata.Some(metadata.PublicationDate{Year: 1969})

	return mapAccessor{
		complete.ID:    complete,
		noPublisher.ID: noPublisher,
		second.ID:      second,
	}
}

func TestFormatBatch_PreservesOrder(t *testing.T) {
	lib := testLibrary()

	text, anyMissing, err := FormatBatch([]string{"messiah", "dune"}, StyleProse, Options{}, lib)
	if err != nil {
		t.Fatalf("FormatBatch() error = %v", err)
	}

	want := "Herbert, F. (1969). Dune Messiah. Chilton.\n\nHerbert, F. (1965). Dune. Chilton."
	if text != want {
		t.Errorf("FormatBatch() text = %q, want %q", text, want)
	}
	if anyMissing {
		t.Error("FormatBatch() anyMissing = true for complete records")
	}
}

func TestFormatBatch_NoTrailingSeparator(t *testing.T) {
	lib := testLibrary()

	text, _, err := FormatBatch([]string{"dune", "messiah", "nopub"}, StyleStructured, Options{}, lib)
	if err != nil {
		t.Fatalf("FormatBatch() error = %v", err)
	}
	if strings.HasSuffix(text, "\n") {
		t.Errorf("FormatBatch() text has trailing newline: %q", text)
	}
	if n := strings.Count(text, "}\n\n@book{"); n != 2 {
		t.Errorf("FormatBatch() separators = %d, want 2:\n%s", n, text)
	}
	if strings.Contains(text, "\n\n\n") {
		t.Errorf("FormatBatch() has more than one blank line between entries:\n%s", text)
	}
}

func TestFormatBatch_AnyMissingIsOr(t *testing.T) {
	lib := testLibrary()

	_, anyMissing, err := FormatBatch([]string{"dune", "nopub", "messiah"}, StyleProse, Options{}, lib)
	if err != nil {
		t.Fatalf("FormatBatch() error = %v", err)
	}
	if !anyMissing {
		t.Error("FormatBatch() anyMissing = false with one incomplete record")
	}
}

func TestFormatBatch_Empty(t *testing.T) {
	text, anyMissing, err := FormatBatch(nil, StyleProse, Options{}, testLibrary())
	if err != nil {
		t.Fatalf("FormatBatch() error = %v", err)
	}
	if text != "" || anyMissing {
		t.Errorf("FormatBatch(nil) = %q, %v, want empty, false", text, anyMissing)
	}
}

func TestFormatBatch_InvalidStyleFailsFast(t *testing.T) {
	called := false
	acc := AccessorFunc(func(id string) (metadata.Record, error) {
		called = true
		return duneRecord(), nil
	})

	_, _, err := FormatBatch([]string{"dune"}, Style(0), Options{}, acc)
	if !errors.Is(err, ErrInvalidStyle) {
		t.Errorf("FormatBatch() error = %v, want ErrInvalidStyle", err)
	}
	if called {
		t.Error("FormatBatch() called the accessor with an invalid style")
	}

	_, _, err = FormatBatch(nil, Style(0), Options{}, acc)
	if !errors.Is(err, ErrInvalidStyle) {
		t.Errorf("FormatBatch(nil) error = %v, want ErrInvalidStyle", err)
	}
}

func TestFormatBatch_AccessorErrorUnchanged(t *testing.T) {
	sentinel := errors.New("library offline")
	acc := AccessorFunc(func(id string) (metadata.Record, error) {
		if id == "bad" {
			return metadata.Record{}, sentinel
		}
		return duneRecord(), nil
	})

	_, _, err := FormatBatch([]string{"dune", "bad"}, StyleProse, Options{}, acc)
	if err != sentinel {
		t.Errorf("FormatBatch() error = %v, want the accessor's error unchanged", err)
	}
}

func TestFormatBatchResults(t *testing.T) {
	entries, err := FormatBatchResults([]string{"nopub", "dune"}, StyleProse, Options{}, testLibrary())
	if err != nil {
		t.Fatalf("FormatBatchResults() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("FormatBatchResults() returned %d entries, want 2", len(entries))
	}
	if entries[0].ID != "nopub" || !entries[0].HasMissingField {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].ID != "dune" || entries[1].HasMissingField {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}

func TestJoin(t *testing.T) {
	text, anyMissing := Join([]Entry{
		{ID: "a", Result: Result{Text: "A"}},
		{ID: "b", Result: Result{Text: "B", HasMissingField: true}},
	})
	if text != "A\n\nB" || !anyMissing {
		t.Errorf("Join() = %q, %v", text, anyMissing)
	}

	text, anyMissing = Join(nil)
	if text != "" || anyMissing {
		t.Errorf("Join(nil) = %q, %v", text, anyMissing)
	}
}
