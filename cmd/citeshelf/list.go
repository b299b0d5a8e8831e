package main

import (
	"fmt"

	"github.com/matsen/citeshelf/internal/metadata"
	"github.com/spf13/cobra"
)

var listLimit int

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum results to return (0 = all)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all records",
	Long: `List all records in library order.

Examples:
  citeshelf list
  citeshelf list --limit 100`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	db := mustOpenDatabase(root)
	defer db.Close()

	recs, err := db.ListAll(listLimit)
	if err != nil {
		exitWithError(ExitError, "listing records: %v", err)
	}

	total, _ := db.Count()

	if humanOutput {
		if len(recs) == 0 {
			fmt.Println("No records in library")
			return nil
		}
		if listLimit > 0 && listLimit < total {
			fmt.Printf("%d records (showing first %d):\n\n", total, len(recs))
		} else {
			fmt.Printf("%d records in library:\n\n", len(recs))
		}
		for _, rec := range recs {
			fmt.Printf("  %-16s %s\n", rec.ID, truncateString(rec.Title.OrElse("(untitled)"), ListTitleMaxLen))
		}
	} else {
		if recs == nil {
			recs = []metadata.Record{}
		}
		outputJSON(recs)
	}

	return nil
}
