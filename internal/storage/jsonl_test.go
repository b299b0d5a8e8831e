package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/citeshelf/internal/metadata"
)

func TestReadAll_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "library.jsonl")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	f.Close()

	recs, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("ReadAll() returned %d records, want 0", len(recs))
	}
}

func TestReadAll_NonExistentFile(t *testing.T) {
	recs, err := ReadAll("/nonexistent/path/library.jsonl")
	if err != nil {
		t.Fatalf("ReadAll() error = %v (should return nil for nonexistent file)", err)
	}
	if len(recs) != 0 {
		t.Errorf("ReadAll() returned %v, want nil or empty slice", recs)
	}
}

func TestReadAll_SingleRecord(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "library.jsonl")

	content := `{"id":"12","title":"Dune","authors":"Frank Herbert","publisher":"Chilton","published":{"year":1965},"isbn":null,"source":{"type":"calibre","id":"12"}}`
	if err := os.WriteFile(path, []byte(content+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	recs, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("ReadAll() returned %d records, want 1", len(recs))
	}

	rec := recs[0]
	if rec.ID != "12" {
		t.Errorf("ID = %q, want 12", rec.ID)
	}
	if len(rec.Authors) != 1 || rec.Authors[0] != "Frank Herbert" {
		t.Errorf("Authors = %v, want [Frank Herbert]", rec.Authors)
	}
	if rec.ISBN.IsPresent() {
		t.Error("ISBN should be absent")
	}
}

func TestReadAll_SkipsEmptyLines(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "library.jsonl")

	content := `{"id":"A","title":"A","authors":["A"]}

{"id":"B","title":"B","authors":["B"]}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	recs, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("ReadAll() returned %d records, want 2", len(recs))
	}
}

func TestReadAll_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "library.jsonl")

	content := `{"id":"valid","title":"Valid","authors":["V"]}
not valid json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if _, err := ReadAll(path); err == nil {
		t.Error("ReadAll() expected error for invalid JSON")
	}
}

func TestAppend(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "library.jsonl")

	recs := []metadata.Record{
		{ID: "A", Title: metadata.Some("A"), Authors: metadata.Authors{"A"}},
		{ID: "B", Title: metadata.Some("B"), Authors: metadata.Authors{"B"}},
	}
	for _, rec := range recs {
		if err := Append(path, rec); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	read, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(read) != 2 || read[0].ID != "A" || read[1].ID != "B" {
		t.Errorf("After 2 Appends, got %+v", read)
	}
}

func TestWriteAll_Overwrites(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "library.jsonl")

	first := []metadata.Record{{ID: "old1"}, {ID: "old2"}}
	if err := WriteAll(path, first); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	second := []metadata.Record{{ID: "new"}}
	if err := WriteAll(path, second); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	read, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(read) != 1 || read[0].ID != "new" {
		t.Errorf("WriteAll() did not overwrite, got %+v", read)
	}
}

func TestRoundTrip_CompleteRecord(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "library.jsonl")

	rec := metadata.Record{
		ID:         "dune",
		Title:      metadata.Some("Dune"),
		Authors:    metadata.Authors{"Frank Herbert"},
		AuthorSort: map[string]string{"Frank Herbert": "Herbert, Frank"},
		Publisher:  metadata.Some("Chilton"),
		Published:  metadata.Some(metadata.PublicationDate{Year: 1965, Month: 8}),
		ISBN:       metadata.Some("9780441013593"),
		PDFPath:    "Frank Herbert/Dune (12)/Dune.pdf",
		Source:     metadata.ImportSource{Type: "calibre", ID: "12"},
	}
	if err := WriteAll(path, []metadata.Record{rec}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	read, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	got := read[0]

	if v, _ := got.Title.Get(); v != "Dune" {
		t.Errorf("Title = %q", v)
	}
	if got.SortName("Frank Herbert") != "Herbert, Frank" {
		t.Errorf("AuthorSort = %v", got.AuthorSort)
	}
	if pub, _ := got.Published.Get(); pub.Year != 1965 || pub.Month != 8 {
		t.Errorf("Published = %+v", pub)
	}
	if v, _ := got.ISBN.Get(); v != "9780441013593" {
		t.Errorf("ISBN = %q", v)
	}
	if got.PDFPath != rec.PDFPath || got.Source != rec.Source {
		t.Errorf("PDFPath/Source = %q/%+v", got.PDFPath, got.Source)
	}
}

func TestFindByID(t *testing.T) {
	recs := []metadata.Record{{ID: "a"}, {ID: "b"}}

	if idx, ok := FindByID(recs, "b"); !ok || idx != 1 {
		t.Errorf("FindByID(b) = %d, %v, want 1, true", idx, ok)
	}
	if _, ok := FindByID(recs, "c"); ok {
		t.Error("FindByID(c) found a record")
	}
}

func TestFindByISBN(t *testing.T) {
	recs := []metadata.Record{
		{ID: "a"},
		{ID: "b", ISBN: metadata.Some("978-0-441-01359-3")},
	}

	tests := []struct {
		isbn    string
		wantIdx int
		wantOK  bool
	}{
		{"9780441013593", 1, true},
		{"978 0441013593", 1, true},
		{"9780000000002", -1, false},
		{"", -1, false},
	}
	for _, tt := range tests {
		idx, ok := FindByISBN(recs, tt.isbn)
		if idx != tt.wantIdx || ok != tt.wantOK {
			t.Errorf("FindByISBN(%q) = %d, %v, want %d, %v", tt.isbn, idx, ok, tt.wantIdx, tt.wantOK)
		}
	}
}

func TestGenerateUniqueID(t *testing.T) {
	recs := []metadata.Record{{ID: "dune"}, {ID: "dune-2"}}

	tests := []struct {
		base string
		want string
	}{
		{"messiah", "messiah"},
		{"dune", "dune-3"},
	}
	for _, tt := range tests {
		if got := GenerateUniqueID(recs, tt.base); got != tt.want {
			t.Errorf("GenerateUniqueID(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}
