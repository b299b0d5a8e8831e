// Package main provides the citeshelf CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/matsen/citeshelf/internal/config"
	"github.com/matsen/citeshelf/internal/storage"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "citeshelf",
	Short: "Book citations from a local library",
	Long: `citeshelf keeps book metadata in a JSONL library file and formats
citations for the records you select.

Records are imported from calibre (calibredb list --for-machine) or from
native JSON. A SQLite cache rebuilt from the library answers listing and
search queries. All commands output JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A .env file may set CITESHELF_ROOT for a project directory
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// getStartingDirectory returns CITESHELF_ROOT if set, else the working directory.
func getStartingDirectory() (string, int) {
	if root := os.Getenv("CITESHELF_ROOT"); root != "" {
		return root, 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindLibrary locates the library root, exits on error.
func mustFindLibrary() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	root, err := config.FindLibrary(start)
	if err != nil {
		exitWithError(ExitConfigError, "%v\n\nRun 'citeshelf init' to create a library.", err)
	}
	return root
}

// mustOpenDatabase opens the cache, rebuilding it first when absent.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(root string) *storage.DB {
	dbPath := config.DBPath(root)
	_, statErr := os.Stat(dbPath)

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(dbPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}

	if os.IsNotExist(statErr) {
		if _, err := db.RebuildFromJSONL(config.RecordsPath(root)); err != nil {
			db.Close()
			exitWithError(ExitDataError, "rebuilding database: %v", err)
		}
	}
	return db
}

// mustLoadConfig loads library configuration, exits on error.
func mustLoadConfig(root string) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustLoadPreferences loads user preferences, exits on error.
func mustLoadPreferences() config.Preferences {
	prefs, err := config.LoadPreferences(config.PreferencesPath())
	if err != nil {
		exitWithError(ExitConfigError, "loading preferences: %v", err)
	}
	return prefs
}
