package main

import (
	"fmt"
	"strings"

	"github.com/matsen/citeshelf/internal/author"
	"github.com/matsen/citeshelf/internal/metadata"
	"github.com/matsen/citeshelf/internal/storage"
	"github.com/spf13/cobra"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search records by keyword",
	Long: `Search records by title, author, publisher or ISBN.

Query Syntax:
  Plain text     - Full-text search over title, authors, publisher, ISBN
  author:name    - Match author last name exactly (first name as prefix)

A query that is a valid ISBN matches regardless of hyphenation.

Examples:
  citeshelf search dune
  citeshelf search 978-0-441-01359-3
  citeshelf search "author:Le Guin"
  citeshelf search "author:Herbert, F"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	db := mustOpenDatabase(root)
	defer db.Close()

	recs, err := searchRecords(db, args[0], searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	// Empty result is not an error
	if recs == nil {
		recs = []metadata.Record{}
	}

	if humanOutput {
		if len(recs) == 0 {
			fmt.Println("No records found")
		} else {
			fmt.Printf("Found %d records:\n\n", len(recs))
			for i, rec := range recs {
				printRecordSummary(i+1, rec)
			}
		}
	} else {
		outputJSON(recs)
	}

	return nil
}

// searchRecords runs a full-text search, or an author match for "author:" queries.
func searchRecords(db *storage.DB, query string, limit int) ([]metadata.Record, error) {
	if name, ok := strings.CutPrefix(query, "author:"); ok {
		q := author.ParseQuery(name)
		if q.IsEmpty() {
			return nil, nil
		}
		all, err := db.ListAll(0)
		if err != nil {
			return nil, err
		}
		return author.Filter(all, q, limit), nil
	}
	return db.Search(query, limit)
}
