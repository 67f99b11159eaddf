// Package banner renders the capstan startup banner: a block-letter logo with
// a diagonal truecolor gradient inside a rounded border, centered with
// display-width arithmetic that ignores ANSI escape sequences.
package banner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
)

// RGB is one gradient stop.
type RGB struct {
	R, G, B uint8
}

func (c RGB) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// sequence returns the SGR escape selecting c as the foreground color.
func (c RGB) sequence() string {
	return termenv.CSI + termenv.RGBColor(c.hex()).Sequence(false) + "m"
}

// Palette stops for the banner gradient. The list wraps back through its
// starting colors so the diagonal sweep tiles seamlessly.
var cosmicStops = []RGB{
	{138, 43, 226}, // blue violet
	{75, 0, 130},   // indigo
	{0, 191, 255},  // deep sky blue
	{30, 144, 255}, // dodger blue
	{138, 43, 226}, // blue violet
	{75, 0, 130},   // indigo
	{0, 191, 255},  // deep sky blue
}

const (
	reset       = termenv.CSI + termenv.ResetSeq + "m"
	borderColor = "\x1b[38;2;138;43;226m" // blue violet
	starColor   = "\x1b[38;2;255;215;0m"  // gold
	titleColor  = "\x1b[38;2;0;191;255m"  // deep sky blue
)

var logoLines = []string{
	" ██████╗  █████╗ ██████╗ ███████╗████████╗ █████╗ ███╗   ██╗",
	"██╔════╝██╔══██╗██╔══██╗██╔════╝╚══██╔══╝██╔══██╗████╗  ██║",
	"██║     ███████║██████╔╝███████╗   ██║   ███████║██╔██╗ ██║",
	"██║     ██╔══██║██╔═══╝ ╚════██║   ██║   ██╔══██║██║╚██╗██║",
	"╚██████╗██║  ██║██║     ███████║   ██║   ██║  ██║██║ ╚████║",
	" ╚═════╝╚═╝  ╚═╝╚═╝     ╚══════╝   ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═══╝",
}

const (
	tagline   = "⚓ Hoisting Releases Ashore ⚓"
	starLine  = "･ ﾟ ☆ ∴｡　　･ﾟ*｡★･ ∴｡　　･ﾟ*｡☆ ･ ﾟ ☆ ∴｡"
	stampLeft = "∴｡　　･ﾟ*｡☆ "
	stampRigh = " ☆｡*ﾟ･　 ｡∴"
)

// ansiRe matches ANSI escape sequences, CSI and otherwise.
var ansiRe = regexp.MustCompile(`\x1b[@-_][0-?]*[ -/]*[@-~]`)

// StripANSI removes every ANSI escape sequence from s.
func StripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

// DisplayWidth measures the terminal cell width of s, excluding escape
// sequences and accounting for wide runes.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(StripANSI(s))
}

// Gradient interpolates the stop colors into a smooth ramp of the given
// number of steps, returned as foreground SGR sequences.
func Gradient(stops []RGB, steps int) []string {
	if len(stops) < 2 || steps < 1 {
		return nil
	}
	segments := len(stops) - 1
	perSegment := steps / segments
	if perSegment < 1 {
		perSegment = 1
	}

	ramp := make([]string, 0, segments*perSegment)
	for i := 0; i < segments; i++ {
		from, to := stops[i], stops[i+1]
		for j := 0; j < perSegment; j++ {
			t := float64(j) / float64(perSegment)
			ramp = append(ramp, RGB{
				R: lerp(from.R, to.R, t),
				G: lerp(from.G, to.G, t),
				B: lerp(from.B, to.B, t),
			}.sequence())
		}
	}
	return ramp
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}

// ApplyDiagonal colors each rune of text with a ramp entry picked by column
// plus line index, producing a diagonal sweep when applied line by line.
func ApplyDiagonal(text string, ramp []string, line int) string {
	if len(ramp) == 0 {
		return text
	}
	var b strings.Builder
	i := 0
	for _, r := range text {
		b.WriteString(ramp[(i+line)%len(ramp)])
		b.WriteRune(r)
		i++
	}
	return b.String()
}

// CenterText centers text within width terminal cells. Embedded escape
// sequences do not count toward the text's width; the left pad is
// floor((width-w)/2) and the right pad fills the remainder.
func CenterText(text string, width int) string {
	w := DisplayWidth(text)
	if w >= width {
		return text
	}
	left := (width - w) / 2
	right := width - left - w
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}

func centerBlock(lines []string, width int) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = CenterText(line, width)
	}
	return out
}

// Options configure banner rendering.
type Options struct {
	Width   int  // total banner width; 0 means the default 80
	NoColor bool // render without any escape sequences
}

// Render produces the full banner as a newline-joined string.
func Render(opts Options) string {
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	contentWidth := width - 4 // border glyph and one space on each side

	logo := append(centerBlock(logoLines, contentWidth),
		CenterText(tagline, contentWidth))

	if opts.NoColor {
		var lines []string
		lines = append(lines, CenterText(starLine, width))
		lines = append(lines, "╭"+strings.Repeat("─", width-2)+"╮")
		for _, line := range logo {
			lines = append(lines, "│ "+line+" │")
		}
		lines = append(lines, "╰"+strings.Repeat("─", width-2)+"╯")
		lines = append(lines, CenterText(stampLeft+"Release Manager"+stampRigh, width))
		return strings.Join(lines, "\n")
	}

	ramp := Gradient(cosmicStops, width)

	var lines []string
	lines = append(lines, CenterText(starColor+starLine+reset, width))
	lines = append(lines, borderColor+"╭"+strings.Repeat("─", width-2)+"╮"+reset)
	for i, line := range logo {
		lines = append(lines, borderColor+"│ "+ApplyDiagonal(line, ramp, i)+" "+borderColor+"│"+reset)
	}
	lines = append(lines, borderColor+"╰"+strings.Repeat("─", width-2)+"╯"+reset)
	lines = append(lines, CenterText(
		starColor+stampLeft+titleColor+"Release Manager"+starColor+stampRigh+reset, width))
	return strings.Join(lines, "\n")
}
