package banner

import (
	"strings"
	"testing"
)

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "hello", want: "hello"},
		{name: "truecolor", input: "\x1b[38;2;255;0;0mred\x1b[0m", want: "red"},
		{name: "mixed", input: "a\x1b[1mb\x1b[0mc", want: "abc"},
		{name: "only escapes", input: "\x1b[31m\x1b[0m", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripANSI(tt.input); got != tt.want {
				t.Errorf("StripANSI(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "ascii", input: "hello", want: 5},
		{name: "colored ascii", input: "\x1b[38;2;1;2;3mhello\x1b[0m", want: 5},
		{name: "wide runes", input: "⚓x", want: 3},
		{name: "box drawing", input: "╭──╮", want: 4},
		{name: "empty", input: "", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayWidth(tt.input); got != tt.want {
				t.Errorf("DisplayWidth(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestCenterText(t *testing.T) {
	// Left pad is floor((T-W)/2), total rendered width is exactly T.
	tests := []struct {
		name     string
		text     string
		width    int
		wantLeft int
	}{
		{name: "even split", text: "abcd", width: 10, wantLeft: 3},
		{name: "odd remainder goes right", text: "abc", width: 10, wantLeft: 3},
		{name: "exact fit", text: "abcd", width: 4, wantLeft: 0},
		{name: "colored text ignores escapes", text: "\x1b[31mabcd\x1b[0m", width: 10, wantLeft: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CenterText(tt.text, tt.width)
			if w := DisplayWidth(got); w != tt.width {
				t.Errorf("rendered width = %d, want %d", w, tt.width)
			}
			left := len(got) - len(strings.TrimLeft(got, " "))
			if left != tt.wantLeft {
				t.Errorf("left pad = %d, want %d", left, tt.wantLeft)
			}
		})
	}
}

func TestCenterTextWiderThanTarget(t *testing.T) {
	s := "abcdefgh"
	if got := CenterText(s, 4); got != s {
		t.Errorf("oversize text should pass through unchanged, got %q", got)
	}
}

func TestGradient(t *testing.T) {
	stops := []RGB{{0, 0, 0}, {255, 255, 255}}
	ramp := Gradient(stops, 10)
	if len(ramp) != 10 {
		t.Fatalf("len(ramp) = %d, want 10", len(ramp))
	}
	// First entry is the exact starting color.
	if ramp[0] != (RGB{0, 0, 0}).sequence() {
		t.Errorf("ramp[0] = %q, want black", ramp[0])
	}
	for _, seq := range ramp {
		if !strings.HasPrefix(seq, "\x1b[") || !strings.HasSuffix(seq, "m") {
			t.Errorf("ramp entry %q is not an SGR sequence", seq)
		}
	}
}

func TestGradientMultiStop(t *testing.T) {
	// Three stops, 9 steps: two segments of four entries each.
	ramp := Gradient([]RGB{{0, 0, 0}, {100, 100, 100}, {200, 200, 200}}, 9)
	if len(ramp) != 8 {
		t.Errorf("len(ramp) = %d, want 8", len(ramp))
	}
}

func TestGradientDegenerate(t *testing.T) {
	if Gradient([]RGB{{1, 2, 3}}, 5) != nil {
		t.Error("single-stop gradient should be nil")
	}
	if Gradient(nil, 5) != nil {
		t.Error("nil stops should yield nil")
	}
}

func TestApplyDiagonal(t *testing.T) {
	ramp := Gradient([]RGB{{0, 0, 0}, {255, 255, 255}}, 4)

	l0 := ApplyDiagonal("ab", ramp, 0)
	l1 := ApplyDiagonal("ab", ramp, 1)
	if l0 == l1 {
		t.Error("line offset should shift the color assignment")
	}
	// Column one of line one uses the same ramp entry as column zero of line two.
	if got := ApplyDiagonal("b", ramp, 2); !strings.HasSuffix(l1, got) {
		t.Errorf("diagonal offset mismatch: %q not a suffix of %q", got, l1)
	}
	if StripANSI(l0) != "ab" {
		t.Errorf("ApplyDiagonal altered text: %q", StripANSI(l0))
	}
}

func TestRenderGeometry(t *testing.T) {
	for _, noColor := range []bool{true, false} {
		out := Render(Options{Width: 80, NoColor: noColor})
		lines := strings.Split(out, "\n")
		if len(lines) != len(logoLines)+5 {
			t.Fatalf("noColor=%v: line count = %d, want %d", noColor, len(lines), len(logoLines)+5)
		}
		for i, line := range lines {
			if w := DisplayWidth(line); w != 80 {
				t.Errorf("noColor=%v: line %d width = %d, want 80", noColor, i, w)
			}
		}
	}
}

func TestRenderNoColorHasNoEscapes(t *testing.T) {
	out := Render(Options{NoColor: true})
	if strings.Contains(out, "\x1b[") {
		t.Error("NoColor render contains escape sequences")
	}
	if !strings.Contains(out, "Release Manager") {
		t.Error("banner missing footer text")
	}
}
