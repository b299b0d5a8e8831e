package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/citeshelf/internal/citation"
	"github.com/matsen/citeshelf/internal/clipboard"
	"github.com/matsen/citeshelf/internal/config"
	"github.com/matsen/citeshelf/internal/export"
	"github.com/matsen/citeshelf/internal/metadata"
	"github.com/matsen/citeshelf/internal/render"
	"github.com/matsen/citeshelf/internal/storage"
	"github.com/spf13/cobra"
)

// missingFieldNote is shown below the citations when any record was incomplete.
const missingFieldNote = "NOTE: One or more fields were empty."

var (
	citeStyle       string
	citeShowISBN    bool
	citeSkipMissing bool
	citeEscape      bool
	citeSearch      string
	citeAll         bool
	citeLimit       int
	citeCopy        bool
	citeHTML        bool
	citeStrict      bool
	citeAppend      string
)

func init() {
	citeCmd.Flags().StringVar(&citeStyle, "style", "", "Citation style: prose (apa) or structured (bib); default from preferences")
	citeCmd.Flags().BoolVar(&citeShowISBN, "show-isbn", false, "Include the ISBN")
	citeCmd.Flags().BoolVar(&citeSkipMissing, "skip-missing-isbn", false, "Omit the ISBN clause when the record has none")
	citeCmd.Flags().BoolVar(&citeEscape, "escape-latex", false, "Escape LaTeX special characters in structured title and publisher")
	citeCmd.Flags().StringVar(&citeSearch, "search", "", "Also cite records matching this search query")
	citeCmd.Flags().BoolVar(&citeAll, "all", false, "Cite every record in library order")
	citeCmd.Flags().IntVar(&citeLimit, "limit", DefaultSearchLimit, "Maximum records taken from --search")
	citeCmd.Flags().BoolVar(&citeCopy, "copy", false, "Copy the citation text to the clipboard")
	citeCmd.Flags().BoolVar(&citeHTML, "html", false, "Render the citations as an HTML fragment")
	citeCmd.Flags().BoolVar(&citeStrict, "strict", false, "Exit with status 4 if any record had an empty field")
	citeCmd.Flags().StringVar(&citeAppend, "append", "", "Append new structured entries to this .bib file")
	rootCmd.AddCommand(citeCmd)
}

var citeCmd = &cobra.Command{
	Use:   "cite [id...]",
	Short: "Format citations for selected records",
	Long: `Format citations for the selected records, in the order given.

Records are selected by id, by --search, or both (ids first). --all
selects the whole library. Options not
given on the command line come from preferences (see 'citeshelf prefs').

Examples:
  citeshelf cite 12 7
  citeshelf cite --search "herbert" --style structured --append refs.bib
  citeshelf cite 12 --show-isbn --skip-missing-isbn --copy
  citeshelf cite 12 --html > dune.html`,
	RunE: runCite,
}

// CiteResult is the response for the cite command.
type CiteResult struct {
	Style           string           `json:"style"`
	Title           string           `json:"title"`
	Text            string           `json:"text"`
	HasMissingField bool             `json:"has_missing_field"`
	Note            string           `json:"note,omitempty"`
	Entries         []citation.Entry `json:"entries"`
	HTML            string           `json:"html,omitempty"`
	Copied          bool             `json:"copied,omitempty"`
	Appended        []string         `json:"appended,omitempty"`
	AlreadyPresent  []string         `json:"already_present,omitempty"`
}

func runCite(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()

	style, opts, err := citeSettings(cmd, mustLoadPreferences())
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if citeAppend != "" && style != citation.StyleStructured {
		exitWithError(ExitError, "--append requires the structured style")
	}

	db := mustOpenDatabase(root)
	defer db.Close()

	var found []metadata.Record
	if citeSearch != "" {
		found, err = searchRecords(db, citeSearch, citeLimit)
		if err != nil {
			exitWithError(ExitError, "searching: %v", err)
		}
	}

	ids := selectIDs(args, found)
	if citeAll {
		ids, err = db.ListIDs(0)
		if err != nil {
			exitWithError(ExitError, "listing records: %v", err)
		}
	}
	if len(ids) == 0 {
		exitWithError(ExitError, "no records selected")
	}

	recs := newRecordCache(db)
	entries, err := citation.FormatBatchResults(ids, style, opts, recs)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			exitWithError(ExitDataError, "%v", err)
		}
		exitWithError(ExitError, "formatting citations: %v", err)
	}
	text, anyMissing := citation.Join(entries)

	result := CiteResult{
		Style:           style.String(),
		Title:           dialogTitle(style, anyMissing),
		Text:            text,
		HasMissingField: anyMissing,
		Entries:         entries,
	}
	if anyMissing {
		result.Note = missingFieldNote
	}

	if citeHTML {
		html, err := render.NewRenderer().HTML(render.Document{
			Heading: result.Title,
			Note:    result.Note,
			Style:   style,
			Entries: entries,
			Titles:  recs.titles(),
		})
		if err != nil {
			exitWithError(ExitError, "rendering HTML: %v", err)
		}
		result.HTML = string(html)
	}

	if citeAppend != "" {
		idx, err := export.ParseBibFile(citeAppend)
		if err != nil {
			exitWithError(ExitError, "reading %s: %v", citeAppend, err)
		}
		fresh, present := filterNewEntries(entries, recs.recs, idx)
		if len(fresh) > 0 {
			content, _ := citation.Join(fresh)
			if err := export.AppendToBibFile(citeAppend, content); err != nil {
				exitWithError(ExitError, "appending to %s: %v", citeAppend, err)
			}
		}
		for _, e := range fresh {
			result.Appended = append(result.Appended, e.ID)
		}
		result.AlreadyPresent = present
	}

	if citeCopy {
		if err := clipboard.Copy(text); err != nil {
			if errors.Is(err, clipboard.ErrClipboardUnavailable) {
				outputWarning("clipboard unavailable (install pbcopy, wl-copy, xclip or xsel)")
			} else {
				outputWarning("copying to clipboard: %v", err)
			}
		} else {
			result.Copied = true
		}
	}

	if humanOutput {
		printCiteHuman(result)
	} else {
		outputJSON(result)
	}

	if citeStrict && anyMissing {
		os.Exit(ExitMissingField)
	}
	return nil
}

// citeSettings resolves style and options. Flags given on the command line
// override preferences; the formatter itself never reads preferences.
func citeSettings(cmd *cobra.Command, prefs config.Preferences) (citation.Style, citation.Options, error) {
	opts := prefs.Options()
	flags := cmd.Flags()
	if flags.Changed("show-isbn") {
		opts.ShowISBN = citeShowISBN
	}
	if flags.Changed("skip-missing-isbn") {
		opts.SkipMissingISBN = citeSkipMissing
	}
	if flags.Changed("escape-latex") {
		opts.EscapeLaTeX = citeEscape
	}

	styleName := prefs.DefaultStyle
	if flags.Changed("style") {
		styleName = citeStyle
	}
	style, err := citation.ParseStyle(styleName)
	if err != nil {
		return 0, citation.Options{}, err
	}
	return style, opts, nil
}

// selectIDs returns explicit ids followed by search hits not already listed.
// Explicit ids are kept as given, repeats included.
func selectIDs(args []string, found []metadata.Record) []string {
	ids := make([]string, 0, len(args)+len(found))
	seen := make(map[string]bool, len(args))
	for _, id := range args {
		ids = append(ids, id)
		seen[id] = true
	}
	for _, rec := range found {
		if !seen[rec.ID] {
			ids = append(ids, rec.ID)
			seen[rec.ID] = true
		}
	}
	return ids
}

// dialogTitle names a batch of citations by its style label, flagging
// batches that had empty fields.
func dialogTitle(style citation.Style, anyMissing bool) string {
	title := style.Label() + " Reference"
	if anyMissing {
		return "Empty fields found | " + title
	}
	return title
}

// filterNewEntries drops entries already in the .bib index, matched by ISBN
// then key. Accepted entries are added to the index so repeats within one
// batch are written once.
func filterNewEntries(entries []citation.Entry, recs map[string]metadata.Record, idx *export.BibIndex) (fresh []citation.Entry, present []string) {
	for _, e := range entries {
		isbn := recs[e.ID].ISBN.OrElse("")
		if idx.HasEntry(e.ID, isbn) {
			present = append(present, e.ID)
			continue
		}
		idx.Add(e.ID, isbn)
		fresh = append(fresh, e)
	}
	return fresh, present
}

func printCiteHuman(r CiteResult) {
	if r.HTML != "" {
		fmt.Print(r.HTML)
		return
	}

	fmt.Println(r.Title)
	fmt.Println()
	fmt.Print(render.Plain(r.Text))
	if r.Note != "" {
		fmt.Println()
		fmt.Println(r.Note)
	}
	if len(r.Appended) > 0 {
		fmt.Printf("\nAppended %d entries: %s\n", len(r.Appended), strings.Join(r.Appended, ", "))
	}
	if len(r.AlreadyPresent) > 0 {
		fmt.Printf("Already present: %s\n", strings.Join(r.AlreadyPresent, ", "))
	}
	if r.Copied {
		fmt.Println("Copied to clipboard")
	}
}

// recordCache wraps an accessor and keeps every record it returns, so the
// caller can reuse titles and ISBNs without a second lookup.
type recordCache struct {
	acc  citation.Accessor
	recs map[string]metadata.Record
}

func newRecordCache(acc citation.Accessor) *recordCache {
	return &recordCache{acc: acc, recs: make(map[string]metadata.Record)}
}

// Metadata implements citation.Accessor.
func (c *recordCache) Metadata(id string) (metadata.Record, error) {
	if rec, ok := c.recs[id]; ok {
		return rec, nil
	}
	rec, err := c.acc.Metadata(id)
	if err != nil {
		return metadata.Record{}, err
	}
	c.recs[id] = rec
	return rec, nil
}

func (c *recordCache) titles() map[string]string {
	m := make(map[string]string, len(c.recs))
	for id, rec := range c.recs {
		if t, ok := rec.Title.Get(); ok {
			m[id] = t
		}
	}
	return m
}
