// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/remind/internal/core/reminder"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// Theme is the active palette.
var Theme = Palette{
	Primary:    lipgloss.Color("#7aa2f7"),
	Foreground: lipgloss.Color("#c0caf5"),
	Muted:      lipgloss.Color("#565f89"),
	Surface:    lipgloss.Color("#3b4261"),
	Success:    lipgloss.Color("#9ece6a"),
	Warning:    lipgloss.Color("#e0af68"),
	Error:      lipgloss.Color("#f7768e"),
}

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Theme.Primary)

	Subtle = lipgloss.NewStyle().
		Foreground(Theme.Muted)

	Selected = lipgloss.NewStyle().
			Bold(true).
			Foreground(Theme.Foreground).
			Background(Theme.Surface)

	Done = lipgloss.NewStyle().
		Strikethrough(true).
		Foreground(Theme.Muted)

	// Leaving renders a reminder inside its exit animation window.
	Leaving = lipgloss.NewStyle().
		Faint(true).
		Foreground(Theme.Muted)

	NoticeInfo = lipgloss.NewStyle().
			Foreground(Theme.Success)

	NoticeError = lipgloss.NewStyle().
			Bold(true).
			Foreground(Theme.Error)
)

var urgencyColors = map[reminder.Urgency]lipgloss.Color{
	reminder.UrgencyNow:      Theme.Error,
	reminder.UrgencyToday:    Theme.Warning,
	reminder.UrgencySoon:     Theme.Primary,
	reminder.UrgencyWhenever: Theme.Muted,
}

// UrgencyStyle returns the accent style for an urgency band.
func UrgencyStyle(u reminder.Urgency) lipgloss.Style {
	c, ok := urgencyColors[u]
	if !ok {
		c = Theme.Foreground
	}
	return lipgloss.NewStyle().Foreground(c)
}

// UrgencyBadge renders a short fixed-width marker for an urgency band.
func UrgencyBadge(u reminder.Urgency) string {
	return UrgencyStyle(u).Render("●")
}
