package citation

import (
	"fmt"
	"strings"

	"github.com/matsen/citeshelf/internal/metadata"
)

// formatStructured renders a @book entry keyed by the record ID.
func formatStructured(rec metadata.Record, opts Options) Result {
	authors := structuredAuthors(rec.Authors)

	title := rec.Title.OrElse("")
	publisher := rec.Publisher.OrElse("")
	if opts.EscapeLaTeX {
		title = escapeLatex(title)
		publisher = escapeLatex(publisher)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("@book{%s,\n", rec.ID))
	b.WriteString(fmt.Sprintf("\tauthor = {%s},\n", authors))
	b.WriteString(fmt.Sprintf("\tyear = {%s},\n", year(rec)))
	b.WriteString(fmt.Sprintf("\ttitle = {%s},\n", title))
	b.WriteString(fmt.Sprintf("\tpublisher = {%s},\n", publisher))

	if opts.includeISBN(rec.ISBN) {
		b.WriteString(fmt.Sprintf("\tnote = {{ISBN} %s}\n", rec.ISBN.OrElse(MissingISBN)))
	}
	b.WriteString("}")

	return Result{
		Text:            b.String(),
		HasMissingField: hasMissingField(rec, authors, opts),
	}
}

// structuredAuthors joins trimmed display names with ", ".
func structuredAuthors(authors metadata.Authors) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, strings.TrimSpace(a))
	}
	return strings.Join(names, ", ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Single pass: replacement output is never rescanned
	replacer := strings.NewReplacer(
		`\`, `\textbackslash{}`,
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
