// Package output provides the styled terminal renderer used by all capstan
// commands. Output adapts to the environment: styled text on a terminal,
// plain text when piped, JSON lines for scripting.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Mode selects the rendering behavior.
type Mode string

const (
	ModeAuto Mode = "auto"
	ModeText Mode = "text"
	ModeJSON Mode = "json"
)

// Styles holds the lipgloss styles shared by every command.
type Styles struct {
	Step    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Prompt  lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultStyles returns the capstan color scheme.
func DefaultStyles() *Styles {
	return &Styles{
		Step:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00bfff")), // deep sky blue
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#32cd32")), // lime green
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#ffa500")), // orange
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4500")), // orange red
		Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ff69b4")), // hot pink
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
}

// Renderer writes styled messages to an output stream and errors to an error
// stream. It also owns the interactive prompt reader.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	in     *bufio.Reader
	mode   Mode
	styles *Styles
	styled bool
}

// NewRenderer builds a renderer for the given streams and mode. ModeAuto
// styles output only when out is a terminal.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	styled := mode == ModeText
	if mode == ModeAuto {
		if f, ok := out.(*os.File); ok {
			styled = isatty.IsTerminal(f.Fd())
		}
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		in:     bufio.NewReader(os.Stdin),
		mode:   mode,
		styles: DefaultStyles(),
		styled: styled,
	}
}

// SetInput replaces the prompt reader. Used by tests and by --yes handling.
func (r *Renderer) SetInput(in io.Reader) {
	r.in = bufio.NewReader(in)
}

// Writer returns the underlying output stream.
func (r *Renderer) Writer() io.Writer { return r.out }

// Mode returns the active rendering mode.
func (r *Renderer) Mode() Mode { return r.mode }

// Styles returns the active style set.
func (r *Renderer) Styles() *Styles { return r.styles }

// Styled reports whether escape sequences will be emitted.
func (r *Renderer) Styled() bool { return r.styled }

// DisableStyles forces plain output regardless of mode or terminal.
func (r *Renderer) DisableStyles() { r.styled = false }

type event struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func (r *Renderer) emit(w io.Writer, level, text string) {
	if r.mode == ModeJSON {
		_ = json.NewEncoder(w).Encode(event{Level: level, Message: text})
		return
	}
	fmt.Fprintln(w, text)
}

func (r *Renderer) styleIf(s lipgloss.Style, text string) string {
	if r.styled {
		return s.Render(text)
	}
	return text
}

// Step announces the start of a release phase.
func (r *Renderer) Step(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.emit(r.out, "step", r.styleIf(r.styles.Step, "\n✨ "+msg))
}

// Success reports a completed action.
func (r *Renderer) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.emit(r.out, "success", r.styleIf(r.styles.Success, "✅ "+msg))
}

// Warning reports a non-fatal condition.
func (r *Renderer) Warning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.emit(r.out, "warning", r.styleIf(r.styles.Warning, "⚠️  "+msg))
}

// Error reports a fatal condition to the error stream.
func (r *Renderer) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.emit(r.errOut, "error", r.styleIf(r.styles.Error, "❌ Error: "+msg))
}

// Println writes a plain line to the output stream.
func (r *Renderer) Println(args ...any) {
	fmt.Fprintln(r.out, args...)
}

// Printf writes formatted text to the output stream.
func (r *Renderer) Printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// JSON writes v as indented JSON to the output stream.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Ask prompts the operator and returns the trimmed line read from input.
// In JSON mode the prompt goes to the error stream so it never interleaves
// with the event stream.
func (r *Renderer) Ask(prompt string) (string, error) {
	promptOut := r.out
	if r.mode == ModeJSON {
		promptOut = r.errOut
	}
	fmt.Fprint(promptOut, r.styleIf(r.styles.Prompt, prompt))
	line, err := r.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. Only "y" or "yes" (case-insensitive)
// counts as assent; everything else, including EOF, is a no.
func (r *Renderer) Confirm(prompt string) bool {
	answer, err := r.Ask(prompt + " (y/N): ")
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}
