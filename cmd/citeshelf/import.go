package main

import (
	"fmt"
	"os"

	"github.com/matsen/citeshelf/internal/config"
	"github.com/matsen/citeshelf/internal/importer"
	"github.com/matsen/citeshelf/internal/metadata"
	"github.com/matsen/citeshelf/internal/storage"
	"github.com/spf13/cobra"
)

var (
	importFormat string
	importDryRun bool
)

func init() {
	importCmd.Flags().StringVar(&importFormat, "format", "", "Import format (calibre, records)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would be imported without writing")
	importCmd.MarkFlagRequired("format")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import records from an external format",
	Long: `Import records from an external format.

Usage:
  calibredb list --for-machine --fields all > books.json
  citeshelf import --format calibre books.json
  citeshelf import --format records books.json --dry-run

Supported formats:
  calibre  - calibredb list --for-machine output
  records  - JSON array of citeshelf records

Incoming records replace existing ones with the same ISBN, then the same
id from the same source. Everything else is appended; id collisions get
a numeric suffix.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// ImportResult represents the result of an import operation.
type ImportResult struct {
	Imported int      `json:"imported"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// DryRunResult represents the result of a dry-run import.
type DryRunResult struct {
	WouldImport int            `json:"would_import"`
	WouldUpdate int            `json:"would_update"`
	WouldSkip   int            `json:"would_skip"`
	Details     []ImportDetail `json:"details,omitempty"`
}

// ImportDetail describes a single import action.
type ImportDetail struct {
	ID     string `json:"id"`
	Action string `json:"action"` // import, update, skip
	Title  string `json:"title"`
	Reason string `json:"reason,omitempty"`
}

func runImport(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()

	data, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitError, "reading file: %v", err)
	}

	newRecs, parseErrors, err := importer.ParseFormat(importFormat, data)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if len(parseErrors) > 0 && len(newRecs) == 0 {
		if humanOutput {
			fmt.Fprintf(os.Stderr, "error: failed to parse any records\n")
			for _, e := range parseErrors {
				fmt.Fprintf(os.Stderr, "  - %v\n", e)
			}
			os.Exit(ExitDataError)
		}
		exitWithError(ExitDataError, "failed to parse any records")
	}

	recordsPath := config.RecordsPath(root)
	existing, err := storage.ReadAll(recordsPath)
	if err != nil {
		exitWithError(ExitDataError, "reading library: %v", err)
	}

	plan := planImport(existing, newRecs)

	errStrs := make([]string, len(parseErrors))
	for i, e := range parseErrors {
		errStrs[i] = e.Error()
	}
	skipped := plan.skipped + len(parseErrors)

	if importDryRun {
		if humanOutput {
			fmt.Printf("Dry run - would import from %s export...\n", importFormat)
			fmt.Printf("  Would import: %d new records\n", plan.imported)
			fmt.Printf("  Would update: %d existing records\n", plan.updated)
			fmt.Printf("  Would skip:   %d (errors or duplicates)\n", skipped)
			printParseErrors("Parse errors", errStrs)
		} else {
			outputJSON(DryRunResult{
				WouldImport: plan.imported,
				WouldUpdate: plan.updated,
				WouldSkip:   skipped,
				Details:     plan.details,
			})
		}
		return nil
	}

	if err := applyImports(recordsPath, existing, plan.actions); err != nil {
		exitWithError(ExitError, "writing library: %v", err)
	}
	rebuildCache(root)

	if humanOutput {
		fmt.Printf("Importing from %s export...\n", importFormat)
		fmt.Printf("  Imported: %d new records\n", plan.imported)
		fmt.Printf("  Updated:  %d existing records\n", plan.updated)
		fmt.Printf("  Skipped:  %d (errors or duplicates)\n", skipped)
		printParseErrors("Errors", errStrs)
	} else {
		outputJSON(ImportResult{
			Imported: plan.imported,
			Updated:  plan.updated,
			Skipped:  skipped,
			Errors:   errStrs,
		})
	}

	return nil
}

func printParseErrors(heading string, errs []string) {
	if len(errs) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", heading)
	for _, e := range errs {
		fmt.Printf("  - %s\n", e)
	}
}

// rebuildCache refreshes the query cache after the library file changed.
// Failure is a warning: the library itself is already written.
func rebuildCache(root string) {
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		outputWarning("creating cache directory: %v", err)
		return
	}
	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		outputWarning("opening database: %v (run 'citeshelf rebuild')", err)
		return
	}
	defer db.Close()
	if _, err := db.RebuildFromJSONL(config.RecordsPath(root)); err != nil {
		outputWarning("rebuilding database: %v (run 'citeshelf rebuild')", err)
	}
}

type importAction struct {
	action      string // import, update, skip
	reason      string
	existingIdx int
}

// importPlan is the outcome of classifying every incoming record.
type importPlan struct {
	actions  []storage.RecordWithAction
	details  []ImportDetail
	imported int
	updated  int
	skipped  int
}

// planImport classifies incoming records against the library. Records seen
// earlier in the same batch count as existing, so a batch never imports the
// same ISBN twice.
func planImport(existing, incoming []metadata.Record) importPlan {
	var plan importPlan

	all := make([]metadata.Record, len(existing))
	copy(all, existing)

	for _, rec := range incoming {
		action := classifyImport(all, rec)

		switch action.action {
		case "import":
			rec.ID = storage.GenerateUniqueID(all, rec.ID)
			plan.actions = append(plan.actions, storage.RecordWithAction{Record: rec, Action: "import"})
			all = append(all, rec)
			plan.imported++
		case "update":
			if action.existingIdx < len(existing) {
				// Keep the library's id so existing citation keys stay stable
				rec.ID = existing[action.existingIdx].ID
				plan.actions = append(plan.actions, storage.RecordWithAction{Record: rec, Action: "update", ExistingIdx: action.existingIdx})
				plan.updated++
			} else {
				action.action = "skip"
				action.reason = "duplicate_in_batch"
				plan.skipped++
			}
		}

		plan.details = append(plan.details, ImportDetail{
			ID:     rec.ID,
			Action: action.action,
			Title:  truncateString(rec.Title.OrElse(""), ImportTitleMaxLen),
			Reason: action.reason,
		})
	}

	return plan
}

// classifyImport determines what to do with an incoming record.
// ISBN is the primary match. The id is the fallback, but only between
// records from the same source type: calibre ids from one library mean
// nothing to hand-written records that happen to share them.
func classifyImport(existing []metadata.Record, rec metadata.Record) importAction {
	if isbn, ok := rec.ISBN.Get(); ok {
		if idx, found := storage.FindByISBN(existing, isbn); found {
			return importAction{action: "update", reason: "isbn_match", existingIdx: idx}
		}
	}

	if idx, found := storage.FindByID(existing, rec.ID); found && existing[idx].Source.Type == rec.Source.Type {
		return importAction{action: "update", reason: "id_match", existingIdx: idx}
	}

	return importAction{action: "import"}
}

// applyImports writes the import results to the library file.
func applyImports(path string, existing []metadata.Record, actions []storage.RecordWithAction) error {
	recs := make([]metadata.Record, len(existing))
	copy(recs, existing)

	for _, a := range actions {
		if a.Action == "update" {
			recs[a.ExistingIdx] = a.Record
		}
	}
	for _, a := range actions {
		if a.Action == "import" {
			recs = append(recs, a.Record)
		}
	}

	return storage.WriteAll(path, recs)
}
