// Package diagnostics renders per-candidate score breakdowns — BM25,
// quality boost, exact-match bonus, proximity boost, semantic score, the
// Stage B rescoring deltas, and the final score — for `rankctl rank
// --explain` and for structured debug logging, adapted from the
// teacher's lime-green TUI palette and isatty-aware color detection.
package diagnostics

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const (
	colorLime     = "154"
	colorLimeDim  = "106"
	colorWhite    = "255"
	colorGray     = "245"
	colorDarkGray = "238"
	colorRed      = "196"
)

// Styles holds the lipgloss styles used to render a diagnostics table.
type Styles struct {
	Header lipgloss.Style
	Rank   lipgloss.Style
	Score  lipgloss.Style
	Delta  lipgloss.Style
	Dim    lipgloss.Style
	Border lipgloss.Style
}

// ColorStyles returns the lime-green accented palette for terminal
// output.
func ColorStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorWhite)),
		Rank:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorLime)),
		Score:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorLimeDim)),
		Delta:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
		Dim:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorDarkGray)),
		Border: lipgloss.NewStyle().Foreground(lipgloss.Color(colorDarkGray)),
	}
}

// PlainStyles returns unstyled components, for piped or NO_COLOR output.
func PlainStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle(),
		Rank:   lipgloss.NewStyle(),
		Score:  lipgloss.NewStyle(),
		Delta:  lipgloss.NewStyle(),
		Dim:    lipgloss.NewStyle(),
		Border: lipgloss.NewStyle(),
	}
}

// DetectNoColor mirrors the teacher's NO_COLOR convention.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// IsTTY reports whether w is a terminal, so callers default to colored
// table output interactively and plain/JSON when piped.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ResolveStyles picks ColorStyles or PlainStyles based on terminal
// detection and the NO_COLOR convention.
func ResolveStyles(w io.Writer) Styles {
	if DetectNoColor() || !IsTTY(w) {
		return PlainStyles()
	}
	return ColorStyles()
}
