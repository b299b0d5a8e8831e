// Package render turns formatted citations into terminal text or an HTML
// fragment suitable for pasting into rich-text editors.
package render

import (
	"bytes"
	"strings"

	"github.com/matsen/citeshelf/internal/citation"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// Document is one rendered batch of citations.
type Document struct {
	Heading string
	Note    string
	Style   citation.Style
	Entries []citation.Entry
	// Titles maps record ids to titles emphasised in prose entries.
	Titles map[string]string
}

// Renderer converts documents to HTML through markdown.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a renderer. Raw HTML in citation text is escaped,
// never passed through.
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithRendererOptions(html.WithXHTML()),
	)
	return &Renderer{md: md}
}

// Plain returns text terminated by exactly one newline.
func Plain(text string) string {
	return strings.TrimRight(text, "\n") + "\n"
}

// HTML renders doc as an HTML fragment.
func (r *Renderer) HTML(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(Markdown(doc)), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Markdown builds the markdown source for doc. Prose entries become
// paragraphs with the title emphasised; structured entries become fenced
// code blocks.
func Markdown(doc Document) string {
	var b strings.Builder

	if doc.Heading != "" {
		b.WriteString("## " + escapeMarkdown(doc.Heading) + "\n\n")
	}

	for _, e := range doc.Entries {
		if doc.Style == citation.StyleStructured {
			b.WriteString("```bibtex\n" + e.Text + "\n```\n\n")
			continue
		}
		b.WriteString(emphasiseTitle(escapeMarkdown(e.Text), escapeMarkdown(doc.Titles[e.ID])) + "\n\n")
	}

	if doc.Note != "" {
		b.WriteString("> " + escapeMarkdown(doc.Note) + "\n")
	}

	return b.String()
}

// emphasiseTitle wraps the first occurrence of title after the year clause.
func emphasiseTitle(text, title string) string {
	if title == "" {
		return text
	}

	start := 0
	if i := strings.Index(text, `\)\. `); i >= 0 {
		start = i
	}
	i := strings.Index(text[start:], title)
	if i < 0 {
		return text
	}
	i += start
	return text[:i] + "*" + title + "*" + text[i+len(title):]
}

// escapeMarkdown backslash-escapes every ASCII punctuation character so
// citation text is never read as markup.
func escapeMarkdown(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
