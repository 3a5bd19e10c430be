package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette.
var (
	cyan      = lipgloss.Color("#06b6d4")
	lightCyan = lipgloss.Color("#22d3ee")
	blue      = lipgloss.Color("#2563eb")
	slate     = lipgloss.Color("#1e293b")
	slateText = lipgloss.Color("#cbd5e1")
	muted     = lipgloss.Color("#94a3b8")
	red       = lipgloss.Color("#ef4444")
	white     = lipgloss.Color("#ffffff")
)

// Theme holds every style of the app.
type Theme struct {
	// GlamourStyle names the glamour standard style used for bot answers.
	GlamourStyle string

	Title    lipgloss.Style
	Subtitle lipgloss.Style

	UserBadge   lipgloss.Style
	BotBadge    lipgloss.Style
	UserBubble  lipgloss.Style
	BotBubble   lipgloss.Style
	Attachment  lipgloss.Style
	SourceTitle lipgloss.Style
	SourceChip  lipgloss.Style
	Typing      lipgloss.Style

	Staged    lipgloss.Style
	Notice    lipgloss.Style
	Recording lipgloss.Style
	Disabled  lipgloss.Style
	Help      lipgloss.Style
	Prompt    lipgloss.Style
	Panel     lipgloss.Style
}

// DetectTheme picks the glamour style from the terminal background.
func DetectTheme() Theme {
	if termenv.ColorProfile() == termenv.Ascii {
		return NewTheme("notty")
	}
	if termenv.HasDarkBackground() {
		return NewTheme("dark")
	}
	return NewTheme("light")
}

// NewTheme builds the styles around a glamour standard style.
func NewTheme(glamourStyle string) Theme {
	return Theme{
		GlamourStyle: glamourStyle,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(lightCyan),
		Subtitle: lipgloss.NewStyle().Foreground(muted),

		UserBadge: lipgloss.NewStyle().Bold(true).Foreground(white).Background(blue).Padding(0, 1),
		BotBadge:  lipgloss.NewStyle().Bold(true).Foreground(white).Background(cyan).Padding(0, 1),
		UserBubble: lipgloss.NewStyle().
			Foreground(white).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		BotBubble: lipgloss.NewStyle().
			Foreground(slateText).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(slate).
			Padding(0, 1),
		Attachment:  lipgloss.NewStyle().Italic(true).Foreground(lightCyan),
		SourceTitle: lipgloss.NewStyle().Bold(true).Foreground(lightCyan),
		SourceChip:  lipgloss.NewStyle().Foreground(slateText).Background(slate).Padding(0, 1),
		Typing:      lipgloss.NewStyle().Foreground(cyan),

		Staged:    lipgloss.NewStyle().Foreground(lightCyan),
		Notice:    lipgloss.NewStyle().Foreground(white).Background(red).Padding(0, 1),
		Recording: lipgloss.NewStyle().Bold(true).Foreground(red),
		Disabled:  lipgloss.NewStyle().Foreground(muted).Faint(true),
		Help:      lipgloss.NewStyle().Foreground(muted),
		Prompt:    lipgloss.NewStyle().Foreground(cyan),
		Panel:     lipgloss.NewStyle(),
	}
}
