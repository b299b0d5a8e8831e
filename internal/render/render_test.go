package render

import (
	"strings"
	"testing"

	"github.com/matsen/citeshelf/internal/citation"
)

func TestPlain(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a", "a\n"},
		{"a\n", "a\n"},
		{"a\n\n", "a\n"},
		{"", "\n"},
	}
	for _, tt := range tests {
		if got := Plain(tt.in); got != tt.want {
			t.Errorf("Plain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHTML_Prose(t *testing.T) {
	doc := Document{
		Heading: "APA Reference",
		Style:   citation.StyleProse,
		Entries: []citation.Entry{
			{ID: "dune", Result: citation.Result{Text: "Herbert, F. (1965). Dune. Chilton. ISBN: 9780441013593."}},
			{ID: "omens", Result: citation.Result{Text: "Terry Pratchett, & Neil Gaiman (). Good Omens. .", HasMissingField: true}},
		},
		Titles: map[string]string{"dune": "Dune", "omens": "Good Omens"},
		Note:   "NOTE: One or more fields were empty.",
	}

	out, err := NewRenderer().HTML(doc)
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	got := string(out)

	wants := []string{
		"<h2>APA Reference</h2>",
		"<p>Herbert, F. (1965). <em>Dune</em>. Chilton. ISBN: 9780441013593.</p>",
		"Terry Pratchett, &amp; Neil Gaiman (). <em>Good Omens</em>. .",
		"<blockquote>",
		"NOTE: One or more fields were empty.",
	}
	for _, w := range wants {
		if !strings.Contains(got, w) {
			t.Errorf("HTML() missing %q, got:\n%s", w, got)
		}
	}
}

func TestHTML_Structured(t *testing.T) {
	doc := Document{
		Style: citation.StyleStructured,
		Entries: []citation.Entry{
			{ID: "dune", Result: citation.Result{Text: "@book{dune,\n\ttitle = {Dune <1>},\n}"}},
		},
	}

	out, err := NewRenderer().HTML(doc)
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	got := string(out)

	if !strings.Contains(got, `<pre><code class="language-bibtex">@book{dune,`) {
		t.Errorf("HTML() should render a bibtex code block, got:\n%s", got)
	}
	if !strings.Contains(got, "Dune &lt;1&gt;") {
		t.Errorf("HTML() should escape angle brackets, got:\n%s", got)
	}
	if strings.Contains(got, "<h2>") {
		t.Errorf("HTML() without heading should not render one, got:\n%s", got)
	}
}

func TestHTML_MarkupIsEscaped(t *testing.T) {
	doc := Document{
		Style: citation.StyleProse,
		Entries: []citation.Entry{
			{ID: "x", Result: citation.Result{Text: "*Not emphasis* <script>alert(1)</script> [link](http://x)"}},
		},
	}

	out, err := NewRenderer().HTML(doc)
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	got := string(out)

	for _, bad := range []string{"<em>", "<script>", "<a "} {
		if strings.Contains(got, bad) {
			t.Errorf("HTML() should not contain %q, got:\n%s", bad, got)
		}
	}
}

func TestEmphasiseTitle(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		title string
		want  string
	}{
		{"after year clause", `Dune\, F\. \(1965\)\. Dune\.`, "Dune", `Dune\, F\. \(1965\)\. *Dune*\.`},
		{"no title", `A \(\)\. \.`, "", `A \(\)\. \.`},
		{"title not found", `A \(\)\. B\.`, "C", `A \(\)\. B\.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := emphasiseTitle(tt.text, tt.title); got != tt.want {
				t.Errorf("emphasiseTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
