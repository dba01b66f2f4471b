// Package tui renders ghgledger output for terminals: lipgloss summary
// cards for styled output and a Bubble Tea trend dashboard for interactive
// sessions.
package tui

import "github.com/charmbracelet/lipgloss"

// Colour palette.
const (
	ColorPrimary  = lipgloss.Color("#7D56F4")
	ColorSubtle   = lipgloss.Color("#777777")
	ColorValue    = lipgloss.Color("#FAFAFA")
	ColorOK       = lipgloss.Color("#4CAF50")
	ColorWarning  = lipgloss.Color("#FFB300")
	ColorCritical = lipgloss.Color("#FF5252")
	ColorInfo     = lipgloss.Color("#00BCD4")
)

// Shared styles.
//
//nolint:gochecknoglobals // lipgloss styles are immutable values shared by every renderer.
var (
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	LabelStyle    = lipgloss.NewStyle().Foreground(ColorSubtle)
	ValueStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorValue)
	SubtleStyle   = lipgloss.NewStyle().Faint(true)
	InfoStyle     = lipgloss.NewStyle().Foreground(ColorInfo)
	OKStyle       = lipgloss.NewStyle().Foreground(ColorOK)
	WarningStyle  = lipgloss.NewStyle().Foreground(ColorWarning)
	CriticalStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorCritical)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true)
	TableSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorValue).
				Background(ColorPrimary)
)

// Layout constants.
const (
	defaultWidth  = 80
	defaultHeight = 24
	borderPadding = 2
	// chromeHeight is the number of lines reserved around the table.
	chromeHeight = 8
	minTableRows = 3
	barWidth     = 20
)

// Key bindings.
const (
	keyQuit  = "q"
	keyCtrlC = "ctrl+c"
	keyEnter = "enter"
	keyEsc   = "esc"
	keyDay   = "d"
	keyWeek  = "w"
	keyMonth = "m"
	keyYear  = "y"
	keyScope = "s"
	keyLoad  = "r"
)

// ViewState is the screen a model is showing.
type ViewState int

const (
	ViewStateLoading ViewState = iota
	ViewStateList
	ViewStateDetail
	ViewStateQuitting
	ViewStateError
)

// String returns the state name.
func (s ViewState) String() string {
	switch s {
	case ViewStateLoading:
		return "loading"
	case ViewStateList:
		return "list"
	case ViewStateDetail:
		return "detail"
	case ViewStateQuitting:
		return "quitting"
	case ViewStateError:
		return "error"
	default:
		return "unknown"
	}
}
