package main

import (
	"testing"

	"github.com/matsen/citeshelf/internal/metadata"
)

func calibreRec(id, isbn string) metadata.Record {
	rec := metadata.Record{ID: id, Source: metadata.ImportSource{Type: "calibre", ID: id}}
	if isbn != "" {
		rec.ISBN = metadata.Some(isbn)
	}
	return rec
}

func TestClassifyImport(t *testing.T) {
	existing := []metadata.Record{
		calibreRec("12", "9780441013593"),
		calibreRec("7", ""),
		{ID: "omens", Source: metadata.ImportSource{Type: "records", ID: "omens"}},
	}

	tests := []struct {
		name       string
		rec        metadata.Record
		wantAction string
		wantReason string
		wantIdx    int
	}{
		{
			name:       "ISBN match ignores hyphens and id",
			rec:        calibreRec("99", "978-0-441-01359-3"),
			wantAction: "update",
			wantReason: "isbn_match",
			wantIdx:    0,
		},
		{
			name:       "id match from same source",
			rec:        calibreRec("7", ""),
			wantAction: "update",
			wantReason: "id_match",
			wantIdx:    1,
		},
		{
			name:       "id match from other source is new",
			rec:        metadata.Record{ID: "7", Source: metadata.ImportSource{Type: "records", ID: "7"}},
			wantAction: "import",
		},
		{
			name:       "no match is new",
			rec:        calibreRec("40", "9780441172696"),
			wantAction: "import",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyImport(existing, tt.rec)

			if got.action != tt.wantAction {
				t.Errorf("action = %q, want %q", got.action, tt.wantAction)
			}
			if got.reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", got.reason, tt.wantReason)
			}
			if tt.wantAction == "update" && got.existingIdx != tt.wantIdx {
				t.Errorf("existingIdx = %d, want %d", got.existingIdx, tt.wantIdx)
			}
		})
	}
}

func TestPlanImport(t *testing.T) {
	existing := []metadata.Record{calibreRec("12", "9780441013593")}
	incoming := []metadata.Record{
		calibreRec("99", "9780441013593"),                                    // update 12
		calibreRec("40", "9780441172696"),                                    // import
		calibreRec("41", "978-0-441-17269-6"),                                // same ISBN as 40 in this batch
		{ID: "12", Source: metadata.ImportSource{Type: "records", ID: "12"}}, // id collision, other source
	}

	plan := planImport(existing, incoming)

	if plan.imported != 2 || plan.updated != 1 || plan.skipped != 1 {
		t.Fatalf("plan = %d imported, %d updated, %d skipped; want 2, 1, 1", plan.imported, plan.updated, plan.skipped)
	}

	if a := plan.actions[0]; a.Action != "update" || a.Record.ID != "12" || a.ExistingIdx != 0 {
		t.Errorf("actions[0] = %+v, want update keeping id 12", a)
	}
	if got := plan.actions[2].Record.ID; got != "12-2" {
		t.Errorf("colliding id = %q, want 12-2", got)
	}
	if d := plan.details[2]; d.Action != "skip" || d.Reason != "duplicate_in_batch" {
		t.Errorf("details[2] = %+v, want duplicate_in_batch skip", d)
	}
}

func TestScanTargets(t *testing.T) {
	recs := []metadata.Record{
		{ID: "12", PDFPath: "dune.pdf", ISBN: metadata.Some("9780441013593")},
		{ID: "7", PDFPath: "left-hand.pdf"},
		{ID: "30"},
	}

	got, err := scanTargets(recs, nil)
	if err != nil {
		t.Fatalf("scanTargets() error = %v", err)
	}
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("scanTargets(all) = %v, want [1]", got)
	}

	got, err = scanTargets(recs, []string{"12", "7"})
	if err != nil {
		t.Fatalf("scanTargets() error = %v", err)
	}
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("scanTargets(12, 7) = %v, want [1]", got)
	}

	if _, err := scanTargets(recs, []string{"nope"}); err == nil {
		t.Error("scanTargets(nope) should fail")
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Dune", 10, "Dune"},
		{"The Left Hand of Darkness", 10, "The Lef..."},
		{"Ça ira, ça ira", 8, "Ça ir..."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
