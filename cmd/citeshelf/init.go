package main

import (
	"fmt"
	"os"

	"github.com/matsen/citeshelf/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new citeshelf library",
	Long: `Initialize a new citeshelf library in the current directory.

Creates:
  .citeshelf/
  ├── library.jsonl   # Empty file
  ├── config.json     # Default config
  └── cache/          # Empty directory (gitignored)`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	if config.IsLibrary(root) {
		exitWithError(ExitError, "directory already contains a citeshelf library")
	}

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating library directory: %v", err)
	}

	f, err := os.Create(config.RecordsPath(root))
	if err != nil {
		exitWithError(ExitError, "creating %s: %v", config.LibraryFile, err)
	}
	f.Close()

	if err := (&config.Config{}).Save(root); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.ConfigFile, err)
	}

	if humanOutput {
		fmt.Printf("Initialized citeshelf library in %s\n", root)
	} else {
		outputJSON(StatusResponse{
			Status: "initialized",
			Path:   root,
		})
	}

	return nil
}
