package output

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"
)

var (
	colorPrimary   = lipgloss.Color("12")  // bright blue
	colorSecondary = lipgloss.Color("10")  // bright green
	colorDim       = lipgloss.Color("240") // gray
	colorHighlight = lipgloss.Color("11")  // bright yellow
)

// styles renders report elements. With color disabled every style is the
// identity.
type styles struct {
	title   func(string) string
	section func(string) string
	key     func(string) string
	value   func(string) string
	bar     func(string) string
	dim     func(string) string
}

func newStyles(w io.Writer, color bool) styles {
	if !color {
		plain := func(s string) string { return s }
		return styles{title: plain, section: plain, key: plain, value: plain, bar: plain, dim: plain}
	}

	r := lipgloss.NewRenderer(w)
	return styles{
		title:   render(r.NewStyle().Bold(true).Foreground(colorPrimary)),
		section: render(r.NewStyle().Bold(true).Underline(true)),
		key:     render(r.NewStyle().Foreground(colorSecondary)),
		value:   render(r.NewStyle().Bold(true)),
		bar:     render(r.NewStyle().Foreground(colorHighlight)),
		dim:     render(r.NewStyle().Foreground(colorDim)),
	}
}

func render(style lipgloss.Style) func(string) string {
	return func(s string) string {
		return style.Render(s)
	}
}

// displayWidth is the terminal cell width of s. Emoji and CJK take two cells.
func displayWidth(s string) int {
	return uniseg.StringWidth(s)
}

// padRight pads s with spaces to width terminal cells.
func padRight(s string, width int) string {
	if n := width - displayWidth(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// padLeft right-aligns s within width terminal cells.
func padLeft(s string, width int) string {
	if n := width - displayWidth(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}

const maxBarWidth = 30

// barFor scales n against highest into a bar of at most maxBarWidth cells.
// Any non-zero count gets at least one cell.
func barFor(n, highest int) string {
	if n <= 0 || highest <= 0 {
		return ""
	}
	width := n * maxBarWidth / highest
	if width == 0 {
		width = 1
	}
	return strings.Repeat("█", width)
}
