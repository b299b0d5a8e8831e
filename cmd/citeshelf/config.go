package main

import (
	"fmt"
	"strings"

	"github.com/matsen/citeshelf/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set library configuration",
	Long: `Get or set configuration stored with the library.

Usage:
  citeshelf config                        # Show all config
  citeshelf config pdf-root               # Get specific value
  citeshelf config pdf-root ~/Books       # Set value
  citeshelf config pdf-viewer zathura     # Set PDF viewer

Keys:
  pdf-root    Directory that relative record PDF paths resolve against
  pdf-viewer  Application used by 'citeshelf open' (default: system)`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// ConfigResponse is the response for config get commands.
type ConfigResponse struct {
	PDFRoot   string `json:"pdf_root"`
	PDFViewer string `json:"pdf_viewer,omitempty"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	cfg := mustLoadConfig(root)

	if len(args) == 0 {
		if humanOutput {
			fmt.Printf("pdf-root:   %s\n", cfg.PDFRoot)
			fmt.Printf("pdf-viewer: %s\n", cfg.PDFViewer)
		} else {
			outputJSON(ConfigResponse{PDFRoot: cfg.PDFRoot, PDFViewer: cfg.PDFViewer})
		}
		return nil
	}

	key := normalizeKey(args[0])
	if len(args) == 1 {
		var value string
		switch key {
		case "pdf-root":
			value = cfg.PDFRoot
		case "pdf-viewer":
			value = cfg.PDFViewer
		default:
			exitWithError(ExitError, "unknown configuration key: %s", args[0])
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): value})
		}
		return nil
	}

	value := args[1]
	switch key {
	case "pdf-root":
		value = config.ExpandPath(value)
		if err := config.ValidatePDFRoot(value); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg.PDFRoot = value
	case "pdf-viewer":
		cfg.PDFViewer = value
	default:
		exitWithError(ExitError, "unknown configuration key: %s", args[0])
	}

	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

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

// normalizeKey converts key formats (pdf-root, pdf_root, PDF-Root) to one form.
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}
