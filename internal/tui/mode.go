package tui

import (
	"os"

	"golang.org/x/term"
)

// OutputMode selects how results are presented on the terminal.
type OutputMode int

const (
	// OutputModePlain writes undecorated text, for pipes and dumb terminals.
	OutputModePlain OutputMode = iota
	// OutputModeStyled writes lipgloss-styled, non-interactive output.
	OutputModeStyled
	// OutputModeInteractive runs a Bubble Tea program.
	OutputModeInteractive
)

// String returns the mode name.
func (m OutputMode) String() string {
	switch m {
	case OutputModePlain:
		return "plain"
	case OutputModeStyled:
		return "styled"
	case OutputModeInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// DetectOutputMode picks an output mode for stdout.
//
// plain and noColor (or a set NO_COLOR variable, or TERM=dumb) force plain
// text. Without a TTY, output is plain unless forceColor is set. CI
// environments get styled output instead of an interactive program.
func DetectOutputMode(forceColor, noColor, plain bool) OutputMode {
	return detectOutputMode(forceColor, noColor, plain, IsTTY(), os.Getenv)
}

func detectOutputMode(forceColor, noColor, plain, tty bool, getenv func(string) string) OutputMode {
	switch {
	case plain, noColor:
		return OutputModePlain
	case getenv("NO_COLOR") != "", getenv("TERM") == "dumb":
		return OutputModePlain
	case !tty:
		if forceColor {
			return OutputModeStyled
		}
		return OutputModePlain
	case getenv("CI") != "":
		return OutputModeStyled
	default:
		return OutputModeInteractive
	}
}

// IsTTY reports whether stdout is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // fd fits in int on supported platforms.
}

// TerminalWidth returns the stdout width, or defaultWidth when unknown.
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd())) //nolint:gosec // fd fits in int on supported platforms.
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
