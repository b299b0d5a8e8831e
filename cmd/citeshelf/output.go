package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/citeshelf/internal/metadata"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search

	ImportTitleMaxLen = 60 // Used in import command output
	ListTitleMaxLen   = 50 // Used in list command output
	SearchTitleMaxLen = 70 // Used in search result summaries
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// outputWarning writes a warning to stderr.
func outputWarning(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// printRecordSummary prints a numbered record in human-readable format.
func printRecordSummary(num int, rec metadata.Record) {
	fmt.Printf("[%d] %s\n", num, rec.ID)
	fmt.Printf("    %s\n", truncateString(rec.Title.OrElse("(untitled)"), SearchTitleMaxLen))

	if len(rec.Authors) > 0 {
		fmt.Printf("    %s\n", formatAuthorsShort(rec.Authors, 3))
	}

	year := ""
	if pub, ok := rec.Published.Get(); ok {
		year = pub.YearString()
	}
	if publisher, ok := rec.Publisher.Get(); ok {
		fmt.Printf("    %s (%s)\n", publisher, year)
	} else {
		fmt.Printf("    (%s)\n", year)
	}
	fmt.Println()
}

// formatAuthorsShort joins up to maxCount authors, adding "et al." beyond that.
func formatAuthorsShort(authors []string, maxCount int) string {
	if len(authors) <= maxCount {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:maxCount], ", ") + ", et al."
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
