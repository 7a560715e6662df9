package tui

import (
	"busmanager/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Styles is derived once from the process theme and shared by all tabs.
type Styles struct {
	App        lipgloss.Style
	Tab        lipgloss.Style
	ActiveTab  lipgloss.Style
	Pane       lipgloss.Style
	FocusPane  lipgloss.Style
	Label      lipgloss.Style
	FocusLabel lipgloss.Style
	Muted      lipgloss.Style
	Alert      lipgloss.Style
	Help       lipgloss.Style

	ListWidth  int
	InputWidth int
}

func border(name string) lipgloss.Border {
	switch name {
	case "normal":
		return lipgloss.NormalBorder()
	case "double":
		return lipgloss.DoubleBorder()
	case "rounded":
		return lipgloss.RoundedBorder()
	default:
		return lipgloss.ThickBorder()
	}
}

func NewStyles(t config.Theme) Styles {
	fg := lipgloss.Color(t.Foreground)
	bg := lipgloss.Color(t.Background)
	accent := lipgloss.Color(t.Accent)
	b := border(t.BorderStyle)

	pane := lipgloss.NewStyle().
		Border(b).
		BorderForeground(lipgloss.Color(t.Border)).
		Padding(0, 1)

	return Styles{
		App:        lipgloss.NewStyle().Background(bg).Padding(1, 2),
		Tab:        lipgloss.NewStyle().Padding(0, 2).Foreground(fg).Background(lipgloss.Color(t.Border)),
		ActiveTab:  lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color(t.Selection)),
		Pane:       pane,
		FocusPane:  pane.BorderForeground(accent),
		Label:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		FocusLabel: lipgloss.NewStyle().Bold(true).Foreground(accent),
		Muted:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		Alert: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(accent).
			Background(lipgloss.Color(t.Alert)).
			Foreground(fg).
			Padding(0, 2),
		Help:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)).Italic(true),
		ListWidth:  t.ListWidth,
		InputWidth: t.InputWidth,
	}
}
