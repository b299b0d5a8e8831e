package main

import (
	"errors"
	"fmt"

	"github.com/matsen/citeshelf/internal/pdf"
	"github.com/matsen/citeshelf/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:   "open <id>",
	Short: "Open a record's PDF",
	Long: `Open a record's PDF in the configured viewer.

Relative PDF paths resolve against pdf-root (see 'citeshelf config').`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func runOpen(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	cfg := mustLoadConfig(root)
	db := mustOpenDatabase(root)
	defer db.Close()

	rec, err := db.Metadata(args[0])
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			exitWithError(ExitDataError, "%v", err)
		}
		exitWithError(ExitError, "looking up record: %v", err)
	}

	opener := pdf.NewOpener(cfg.PDFRoot, cfg.PDFViewer)
	path, err := opener.ResolvePath(rec.PDFPath)
	if err != nil {
		exitWithError(ExitConfigError, "%s: %v", rec.ID, err)
	}
	if err := opener.Open(path); err != nil {
		exitWithError(ExitError, "opening PDF: %v", err)
	}

	if humanOutput {
		fmt.Printf("Opened %s\n", path)
	} else {
		outputJSON(StatusResponse{Status: "opened", Path: path})
	}
	return nil
}
