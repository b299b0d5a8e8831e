package pdf

import (
	"regexp"

	"github.com/ledongthuc/pdf"
	"github.com/matsen/citeshelf/internal/metadata"
)

// scanPages is how many leading pages ExtractISBN reads. The copyright page
// usually sits within the first few.
const scanPages = 5

var (
	// labelledISBN matches a number following an "ISBN" label.
	labelledISBN = regexp.MustCompile(`(?i)ISBN(?:-1[03])?[^0-9]{0,12}([0-9][0-9\- ]{8,16}[0-9Xx])`)
	// bareISBN13 matches an unlabelled 978/979 number with optional hyphens.
	bareISBN13 = regexp.MustCompile(`\b97[89][0-9\-]{10,14}`)
)

// ExtractISBN returns the first valid ISBN printed in the leading pages of
// a PDF, normalized. It returns "" (not an error) when none is found.
func ExtractISBN(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	maxPages := scanPages
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if isbn := findISBN(text); isbn != "" {
			return isbn, nil
		}
	}

	return "", nil
}

// findISBN finds an ISBN in text. Labelled numbers win over bare ones.
func findISBN(text string) string {
	for _, m := range labelledISBN.FindAllStringSubmatch(text, -1) {
		if isbn := firstValidISBN(m[1]); isbn != "" {
			return isbn
		}
	}
	for _, m := range bareISBN13.FindAllString(text, -1) {
		if isbn := firstValidISBN(m); isbn != "" {
			return isbn
		}
	}
	return ""
}

// firstValidISBN reads digits from the start of a candidate and returns a
// valid ISBN-13 or ISBN-10 prefix. Candidates may run into neighbouring
// numbers such as a year, so only the prefix is checked.
func firstValidISBN(candidate string) string {
	var digits []byte
	for i := 0; i < len(candidate) && len(digits) < 13; i++ {
		c := candidate[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, c)
		case c == 'x' || c == 'X':
			digits = append(digits, 'X')
		}
	}

	if len(digits) >= 13 {
		if isbn := string(digits[:13]); metadata.ValidISBN(isbn) {
			return isbn
		}
	}
	if len(digits) >= 10 {
		if isbn := string(digits[:10]); metadata.ValidISBN(isbn) {
			return isbn
		}
	}
	return ""
}
