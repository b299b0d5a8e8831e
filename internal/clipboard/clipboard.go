// Package clipboard copies text to the system clipboard via shell commands.
package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrClipboardUnavailable is returned when no clipboard tool is installed.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// tool is a clipboard command and the arguments that make it read stdin.
type tool struct {
	name string
	args []string
}

// tools lists candidate commands per platform in preference order.
var tools = map[string][]tool{
	"darwin": {
		{name: "pbcopy"},
	},
	"linux": {
		{name: "wl-copy"},
		{name: "xclip", args: []string{"-selection", "clipboard"}},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
	},
}

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// getClipboardCommand returns a command for the first installed tool.
func getClipboardCommand() (*exec.Cmd, error) {
	for _, t := range tools[runtime.GOOS] {
		if _, err := lookPath(t.name); err == nil {
			return exec.Command(t.name, t.args...), nil
		}
	}
	return nil, ErrClipboardUnavailable
}

// IsAvailable reports whether a clipboard tool is installed.
func IsAvailable() bool {
	_, err := getClipboardCommand()
	return err == nil
}

// Copy copies text to the system clipboard.
// Returns ErrClipboardUnavailable if no tool is installed.
func Copy(text string) error {
	cmd, err := getClipboardCommand()
	if err != nil {
		return err
	}

	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", cmd.Args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
