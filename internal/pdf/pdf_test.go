package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindISBN(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "labelled hyphenated isbn-13",
			text: "Copyright 1965\nISBN 978-0-441-01359-3\nPrinted in the USA",
			want: "9780441013593",
		},
		{
			name: "labelled isbn-10 with colon",
			text: "ISBN-10: 0-441-01359-7",
			want: "0441013597",
		},
		{
			name: "isbn-10 with check X",
			text: "ISBN 0-575-04800-X (hardback)",
			want: "057504800X",
		},
		{
			name: "number runs into a year",
			text: "ISBN 0441013597 1965",
			want: "0441013597",
		},
		{
			name: "bare isbn-13",
			text: "Chilton Books 9780441013593 first edition",
			want: "9780441013593",
		},
		{
			name: "invalid checksum skipped for later valid one",
			text: "ISBN 978-0-441-01359-4\nISBN 978-0-441-01359-3",
			want: "9780441013593",
		},
		{
			name: "no isbn",
			text: "Chapter One\nA beginning is the time for taking the most delicate care",
			want: "",
		},
		{
			name: "phone number is not an isbn",
			text: "Call 555-0100 for orders",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findISBN(tt.text); got != tt.want {
				t.Errorf("findISBN(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractISBN_NotPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(path, []byte("plain text"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := ExtractISBN(path); err == nil {
		t.Error("ExtractISBN() should fail for a non-PDF file")
	}
}

func TestOpener_ResolvePath(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "Herbert"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	rel := filepath.Join("Herbert", "Dune.pdf")
	if err := os.WriteFile(filepath.Join(root, rel), []byte("%PDF"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	abs := filepath.Join(root, rel)

	tests := []struct {
		name    string
		root    string
		path    string
		want    string
		wantErr bool
	}{
		{"relative", root, rel, abs, false},
		{"absolute ignores root", "", abs, abs, false},
		{"empty path", root, "", "", true},
		{"relative without root", "", rel, "", true},
		{"missing file", root, "missing.pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewOpener(tt.root, "").ResolvePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolvePath(%q) error = %v, wantErr = %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolvePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestOpener_Command(t *testing.T) {
	tests := []struct {
		goos    string
		viewer  string
		want    string
		wantErr bool
	}{
		{"darwin", "", "open /b.pdf", false},
		{"darwin", "Skim", "open -a Skim /b.pdf", false},
		{"linux", "system", "xdg-open /b.pdf", false},
		{"linux", "zathura", "zathura /b.pdf", false},
		{"plan9", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.viewer, func(t *testing.T) {
			cmd, err := NewOpener("", tt.viewer).command(tt.goos, "/b.pdf")
			if (err != nil) != tt.wantErr {
				t.Fatalf("command() error = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := strings.Join(cmd.Args, " "); got != tt.want {
				t.Errorf("command() = %q, want %q", got, tt.want)
			}
		})
	}
}
