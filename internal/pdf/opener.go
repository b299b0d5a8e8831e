// Package pdf locates, opens and scans the PDF files attached to records.
package pdf

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Opener resolves record PDF paths and launches a viewer.
type Opener struct {
	pdfRoot string
	viewer  string
}

// NewOpener creates an opener. Relative record paths are resolved against
// pdfRoot; viewer names an application or "system" for the platform default.
func NewOpener(pdfRoot, viewer string) *Opener {
	if viewer == "" {
		viewer = "system"
	}
	return &Opener{
		pdfRoot: pdfRoot,
		viewer:  viewer,
	}
}

// ResolvePath returns the on-disk location of a record's PDF.
// Calibre imports store absolute paths; other records are relative to the root.
func (o *Opener) ResolvePath(recordPath string) (string, error) {
	if recordPath == "" {
		return "", fmt.Errorf("record has no PDF")
	}

	fullPath := recordPath
	if !filepath.IsAbs(recordPath) {
		if o.pdfRoot == "" {
			return "", fmt.Errorf("pdf_root not configured for relative path %s", recordPath)
		}
		fullPath = filepath.Join(o.pdfRoot, recordPath)
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("PDF not found: %s", fullPath)
		}
		return "", fmt.Errorf("checking PDF: %w", err)
	}

	return fullPath, nil
}

// Open launches the viewer on fullPath without waiting for it to exit.
func (o *Opener) Open(fullPath string) error {
	cmd, err := o.command(runtime.GOOS, fullPath)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// command builds the viewer invocation for goos.
func (o *Opener) command(goos, path string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		if o.viewer == "system" {
			return exec.Command("open", path), nil
		}
		return exec.Command("open", "-a", o.viewer, path), nil
	case "linux":
		if o.viewer == "system" {
			return exec.Command("xdg-open", path), nil
		}
		return exec.Command(o.viewer, path), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
