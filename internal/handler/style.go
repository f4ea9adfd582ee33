package handler

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ColorMode controls styling of the kind prefix on terminal output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a colour mode name.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q (valid: auto, always, never)", s)
	}
}

var (
	okColor    = lipgloss.Color("#10B981") // Green
	errorColor = lipgloss.Color("#F87171") // Red
	warnColor  = lipgloss.Color("#F59E0B") // Amber
	mutedColor = lipgloss.Color("#9CA3AF") // Gray
	eventColor = lipgloss.Color("#60A5FA") // Blue
)

// styler renders the kind prefix of a log line for one output stream. A nil
// styler leaves text unchanged.
type styler struct {
	kinds map[string]lipgloss.Style
}

func newStyler(w io.Writer, mode ColorMode) *styler {
	var r *lipgloss.Renderer
	switch mode {
	case ColorNever:
		return nil
	case ColorAlways:
		r = lipgloss.NewRenderer(w)
		r.SetColorProfile(termenv.ANSI256)
	default:
		f, ok := w.(*os.File)
		if !ok || !term.IsTerminal(int(f.Fd())) {
			return nil
		}
		r = lipgloss.NewRenderer(w)
	}

	return &styler{kinds: map[string]lipgloss.Style{
		KindOK:    r.NewStyle().Foreground(okColor).Bold(true),
		KindNOK:   r.NewStyle().Foreground(errorColor).Bold(true),
		KindError: r.NewStyle().Foreground(errorColor),
		KindWarn:  r.NewStyle().Foreground(warnColor),
		KindDebug: r.NewStyle().Foreground(mutedColor),
		KindEvent: r.NewStyle().Foreground(eventColor),
	}}
}

func (s *styler) kind(k string) string {
	if s == nil {
		return k
	}
	if st, ok := s.kinds[k]; ok {
		return st.Render(k)
	}
	return k
}
