package citation

import (
	"strings"

	"github.com/matsen/citeshelf/internal/metadata"
)

// proseAuthorSep joins every author after the first, regardless of count.
const proseAuthorSep = ", & "

// formatProse renders "<authors> (<year>). <title>. <publisher>." with an
// optional " ISBN: <isbn>." appendix.
func formatProse(rec metadata.Record, opts Options) Result {
	authors := proseAuthors(rec)

	var b strings.Builder
	b.WriteString(authors)
	b.WriteString(" (")
	b.WriteString(year(rec))
	b.WriteString("). ")
	b.WriteString(rec.Title.OrElse(""))
	b.WriteString(". ")
	b.WriteString(rec.Publisher.OrElse(""))
	b.WriteString(".")

	if opts.includeISBN(rec.ISBN) {
		b.WriteString(" ISBN: ")
		b.WriteString(rec.ISBN.OrElse(MissingISBN))
		b.WriteString(".")
	}

	return Result{
		Text:            b.String(),
		HasMissingField: hasMissingField(rec, authors, opts),
	}
}

// proseAuthors relabels each author with its sort form, keeping credit order.
func proseAuthors(rec metadata.Record) string {
	labels := make([]string, len(rec.Authors))
	for i, a := range rec.Authors {
		labels[i] = rec.SortName(a)
	}
	return strings.Join(labels, proseAuthorSep)
}
