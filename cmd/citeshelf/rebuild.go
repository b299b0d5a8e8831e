package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/matsen/citeshelf/internal/config"
	"github.com/matsen/citeshelf/internal/storage"
	"github.com/spf13/cobra"
)

// rebuildDebounce coalesces the burst of events an editor save produces.
const rebuildDebounce = 200 * time.Millisecond

var rebuildWatch bool

func init() {
	rebuildCmd.Flags().BoolVar(&rebuildWatch, "watch", false, "Keep running and rebuild whenever the library file changes")
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query cache from the library file",
	Long: `Rebuild the SQLite query cache from library.jsonl.

Use this after editing the library by hand or pulling changes from git.
With --watch the command stays in the foreground and rebuilds on every
change until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	count, err := db.RebuildFromJSONL(config.RecordsPath(root))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query cache with %d records\n", count)
	} else {
		outputJSON(RebuildResult{
			Status:  "rebuilt",
			Records: count,
		})
	}

	if !rebuildWatch {
		return nil
	}
	if err := watchLibrary(db, config.RecordsPath(root)); err != nil {
		exitWithError(ExitError, "watching library: %v", err)
	}
	return nil
}

// watchLibrary rebuilds the cache on changes to path until SIGINT or SIGTERM.
// The parent directory is watched so atomic replace-on-save is seen.
func watchLibrary(db *storage.DB, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	log.Printf("[watch] %s", path)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var (
		timer   *time.Timer
		trigger = make(chan struct{}, 1)
	)
	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(rebuildDebounce, func() {
			select {
			case trigger <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				schedule()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("[watch] error: %v", err)
		case <-trigger:
			count, err := db.RebuildFromJSONL(path)
			if err != nil {
				log.Printf("[watch] rebuild failed: %v", err)
				continue
			}
			log.Printf("[watch] rebuilt %d records", count)
		case <-stop:
			if timer != nil {
				timer.Stop()
			}
			return nil
		}
	}
}
