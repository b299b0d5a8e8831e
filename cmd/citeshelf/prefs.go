package main

import (
	"fmt"

	"github.com/matsen/citeshelf/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(prefsCmd)
}

var prefsCmd = &cobra.Command{
	Use:   "prefs [key] [value]",
	Short: "Get or set formatting preferences",
	Long: `Get or set formatting preferences.

Preferences are stored per user in $XDG_CONFIG_HOME/citeshelf/prefs.yml
and supply defaults for 'citeshelf cite'.

Usage:
  citeshelf prefs                          # Show all preferences
  citeshelf prefs show-isbn                # Get one value
  citeshelf prefs skip-missing-isbn true   # Set a value

Keys:
  show-isbn          Include the ISBN in citations (true/false)
  skip-missing-isbn  Omit the ISBN clause when a record has none (true/false)
  escape-latex       Escape LaTeX specials in structured entries (true/false)
  default-style      prose (apa) or structured (bib)`,
	Args: cobra.MaximumNArgs(2),
	RunE: runPrefs,
}

func runPrefs(cmd *cobra.Command, args []string) error {
	path := config.PreferencesPath()
	prefs := mustLoadPreferences()

	if len(args) == 0 {
		if humanOutput {
			for _, key := range config.PrefKeys {
				v, _ := prefs.Get(key)
				fmt.Printf("%-18s %s\n", key+":", v)
			}
		} else {
			outputJSON(prefs)
		}
		return nil
	}

	key := args[0]
	if len(args) == 1 {
		v, err := prefs.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(v)
		} else {
			outputJSON(map[string]string{key: v})
		}
		return nil
	}

	if err := prefs.Set(key, args[1]); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := prefs.Save(path); err != nil {
		exitWithError(ExitConfigError, "saving preferences: %v", err)
	}

	value, _ := prefs.Get(key)
	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    key,
			Value:  value,
		})
	}
	return nil
}
