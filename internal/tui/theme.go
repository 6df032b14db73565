package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

type ThemeName string

const (
	ThemePorcelain ThemeName = "porcelain"
	ThemeMidnight  ThemeName = "midnight"
)

type Theme struct {
	Name ThemeName

	// Colors
	TextPrimary lipgloss.AdaptiveColor
	TextMuted   lipgloss.AdaptiveColor
	TextFaint   lipgloss.AdaptiveColor

	Accent   lipgloss.AdaptiveColor
	Accent2  lipgloss.AdaptiveColor
	Success  lipgloss.AdaptiveColor
	Warn     lipgloss.AdaptiveColor
	Error    lipgloss.AdaptiveColor
	Border   lipgloss.AdaptiveColor
	BorderHi lipgloss.AdaptiveColor

	// Styles
	TopBar      lipgloss.Style
	TopBarTitle lipgloss.Style
	TopBarBadge lipgloss.Style
	TopBarMeta  lipgloss.Style

	Footer           lipgloss.Style
	InputBox         lipgloss.Style
	InputBoxDisabled lipgloss.Style
	Spinner          lipgloss.Style

	RoleYou lipgloss.Style
	RoleAI  lipgloss.Style
	RoleErr lipgloss.Style

	BodyYou lipgloss.Style
	BodyAI  lipgloss.Style
	BodyErr lipgloss.Style

	DayDivider  lipgloss.Style
	Caret       lipgloss.Style
	UnseenBadge lipgloss.Style
	Guidance    lipgloss.Style
}

// NewTheme picks a theme from the explicit name, falling back to the
// CHATBUBBLE_THEME environment variable, then porcelain.
// CHATBUBBLE_NO_COLOR=1 strips color entirely.
func NewTheme(name string) Theme {
	if name == "" {
		name = os.Getenv("CHATBUBBLE_THEME")
	}
	if os.Getenv("CHATBUBBLE_NO_COLOR") == "1" {
		return NewNoColorTheme()
	}
	switch ThemeName(name) {
	case ThemeMidnight:
		return newMidnightTheme()
	default:
		return newPorcelainTheme()
	}
}

// finish derives the composite styles shared by every palette.
func (t Theme) finish() Theme {
	t.TopBar = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.TopBarTitle = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.TopBarBadge = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.TopBarMeta = lipgloss.NewStyle().Foreground(t.TextMuted)

	t.Footer = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.InputBox = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.BorderHi).Padding(0, 1)
	t.InputBoxDisabled = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.Spinner = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)

	t.RoleYou = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.RoleAI = lipgloss.NewStyle().Bold(true).Foreground(t.Success)
	t.RoleErr = lipgloss.NewStyle().Bold(true).Foreground(t.Error)

	t.BodyYou = lipgloss.NewStyle().Foreground(t.TextPrimary)
	t.BodyAI = lipgloss.NewStyle().Foreground(t.TextPrimary)
	t.BodyErr = lipgloss.NewStyle().Foreground(t.Error)

	t.DayDivider = lipgloss.NewStyle().Foreground(t.TextFaint)
	t.Caret = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.UnseenBadge = lipgloss.NewStyle().Bold(true).Foreground(t.Warn)
	t.Guidance = lipgloss.NewStyle().Foreground(t.TextMuted)
	return t
}

func NewNoColorTheme() Theme {
	mono := lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"}
	muted := lipgloss.AdaptiveColor{Light: "#333333", Dark: "#dddddd"}
	faint := lipgloss.AdaptiveColor{Light: "#555555", Dark: "#bbbbbb"}
	return Theme{
		Name:        "no-color",
		TextPrimary: mono,
		TextMuted:   muted,
		TextFaint:   faint,
		Accent:      mono,
		Accent2:     mono,
		Success:     mono,
		Warn:        mono,
		Error:       mono,
		Border:      faint,
		BorderHi:    mono,
	}.finish()
}

func newPorcelainTheme() Theme {
	return Theme{
		Name:        ThemePorcelain,
		TextPrimary: lipgloss.AdaptiveColor{Light: "#1d2433", Dark: "#f2f2f2"},
		TextMuted:   lipgloss.AdaptiveColor{Light: "#4a5568", Dark: "#c7c7c7"},
		TextFaint:   lipgloss.AdaptiveColor{Light: "#718096", Dark: "#9aa0a6"},

		Accent:   lipgloss.AdaptiveColor{Light: "#1f6feb", Dark: "#7aa2ff"},
		Accent2:  lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#f4b27d"},
		Success:  lipgloss.AdaptiveColor{Light: "#0f766e", Dark: "#46d1b7"},
		Warn:     lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#f4b27d"},
		Error:    lipgloss.AdaptiveColor{Light: "#b42318", Dark: "#ff7a7a"},
		Border:   lipgloss.AdaptiveColor{Light: "#cbd5e0", Dark: "#3a3a3a"},
		BorderHi: lipgloss.AdaptiveColor{Light: "#1f6feb", Dark: "#7aa2ff"},
	}.finish()
}

func newMidnightTheme() Theme {
	return Theme{
		Name:        ThemeMidnight,
		TextPrimary: lipgloss.AdaptiveColor{Light: "#111827", Dark: "#eaeaea"},
		TextMuted:   lipgloss.AdaptiveColor{Light: "#374151", Dark: "#b7b7b7"},
		TextFaint:   lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#8d8d8d"},

		Accent:   lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#7aa2ff"},
		Accent2:  lipgloss.AdaptiveColor{Light: "#0ea5e9", Dark: "#5cc8ff"},
		Success:  lipgloss.AdaptiveColor{Light: "#059669", Dark: "#46d1b7"},
		Warn:     lipgloss.AdaptiveColor{Light: "#d97706", Dark: "#f4b27d"},
		Error:    lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#ff7a7a"},
		Border:   lipgloss.AdaptiveColor{Light: "#9ca3af", Dark: "#2a2a2a"},
		BorderHi: lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#7aa2ff"},
	}.finish()
}
