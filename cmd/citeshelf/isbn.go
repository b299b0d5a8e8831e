package main

import (
	"fmt"

	"github.com/matsen/citeshelf/internal/config"
	"github.com/matsen/citeshelf/internal/metadata"
	"github.com/matsen/citeshelf/internal/pdf"
	"github.com/matsen/citeshelf/internal/storage"
	"github.com/spf13/cobra"
)

var (
	isbnPDFRoot string
	isbnDryRun  bool
)

func init() {
	isbnScanCmd.Flags().StringVar(&isbnPDFRoot, "pdf-root", "", "Override the configured pdf_root")
	isbnScanCmd.Flags().BoolVar(&isbnDryRun, "dry-run", false, "Report found ISBNs without writing")
	isbnCmd.AddCommand(isbnScanCmd)
	rootCmd.AddCommand(isbnCmd)
}

var isbnCmd = &cobra.Command{
	Use:   "isbn",
	Short: "ISBN maintenance commands",
}

var isbnScanCmd = &cobra.Command{
	Use:   "scan [id...]",
	Short: "Fill absent ISBNs from each record's PDF",
	Long: `Scan the first pages of each record's PDF for an ISBN and store the
first one that passes checksum validation.

Only records without an ISBN are scanned. With no ids, every record in the
library is considered.

Examples:
  citeshelf isbn scan
  citeshelf isbn scan 12 7 --dry-run`,
	RunE: runISBNScan,
}

// ScanResult reports the outcome for one record.
type ScanResult struct {
	ID     string `json:"id"`
	Status string `json:"status"` // found, not_found, error
	ISBN   string `json:"isbn,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ScanResponse is the response for the isbn scan command.
type ScanResponse struct {
	Scanned int          `json:"scanned"`
	Found   int          `json:"found"`
	Results []ScanResult `json:"results"`
}

func runISBNScan(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	cfg := mustLoadConfig(root)

	pdfRoot := cfg.PDFRoot
	if isbnPDFRoot != "" {
		pdfRoot = config.ExpandPath(isbnPDFRoot)
	}
	opener := pdf.NewOpener(pdfRoot, cfg.PDFViewer)

	recordsPath := config.RecordsPath(root)
	recs, err := storage.ReadAll(recordsPath)
	if err != nil {
		exitWithError(ExitDataError, "reading library: %v", err)
	}

	targets, err := scanTargets(recs, args)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	resp := ScanResponse{Results: []ScanResult{}}
	for _, i := range targets {
		rec := &recs[i]
		resp.Scanned++

		res := ScanResult{ID: rec.ID}
		isbn, err := scanRecord(opener, *rec)
		switch {
		case err != nil:
			res.Status = "error"
			res.Error = err.Error()
		case isbn == "":
			res.Status = "not_found"
		default:
			res.Status = "found"
			res.ISBN = isbn
			rec.ISBN = metadata.Some(isbn)
			resp.Found++
		}
		resp.Results = append(resp.Results, res)
	}

	if resp.Found > 0 && !isbnDryRun {
		if err := storage.WriteAll(recordsPath, recs); err != nil {
			exitWithError(ExitError, "writing library: %v", err)
		}
		rebuildCache(root)
	}

	if humanOutput {
		for _, r := range resp.Results {
			switch r.Status {
			case "found":
				fmt.Printf("  %-16s %s\n", r.ID, r.ISBN)
			case "not_found":
				fmt.Printf("  %-16s (no ISBN found)\n", r.ID)
			default:
				fmt.Printf("  %-16s error: %s\n", r.ID, r.Error)
			}
		}
		verb := "Stored"
		if isbnDryRun {
			verb = "Would store"
		}
		fmt.Printf("\nScanned %d records. %s %d ISBNs.\n", resp.Scanned, verb, resp.Found)
	} else {
		outputJSON(resp)
	}
	return nil
}

// scanTargets returns indexes of records to scan: those named by ids (or
// all when none are given) that lack an ISBN and have a PDF.
func scanTargets(recs []metadata.Record, ids []string) ([]int, error) {
	var candidates []int
	if len(ids) == 0 {
		for i := range recs {
			candidates = append(candidates, i)
		}
	} else {
		for _, id := range ids {
			i, found := storage.FindByID(recs, id)
			if !found {
				return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
			}
			candidates = append(candidates, i)
		}
	}

	var targets []int
	for _, i := range candidates {
		if !recs[i].ISBN.IsPresent() && recs[i].PDFPath != "" {
			targets = append(targets, i)
		}
	}
	return targets, nil
}

func scanRecord(opener *pdf.Opener, rec metadata.Record) (string, error) {
	path, err := opener.ResolvePath(rec.PDFPath)
	if err != nil {
		return "", err
	}
	return pdf.ExtractISBN(path)
}
