package metadata

import "testing"

func TestNormalizeISBN(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"978-0-441-01359-3", "9780441013593"},
		{"0 441 17271 x", "044117271X"},
		{"9780441013593", "9780441013593"},
		{"ISBN 978", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeISBN(tt.input); got != tt.want {
				t.Errorf("NormalizeISBN(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidISBN(t *testing.T) {
	tests := []struct {
		isbn string
		want bool
	}{
		{"9780441013593", true},
		{"9780441013594", false},
		{"0441172717", true},
		{"044117271X", false},
		{"080442957X", true},
		{"1234567890123", false},
		{"X441172717", false},
		{"12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.isbn, func(t *testing.T) {
			if got := ValidISBN(tt.isbn); got != tt.want {
				t.Errorf("ValidISBN(%q) = %v, want %v", tt.isbn, got, tt.want)
			}
		})
	}
}
