package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/remind/internal/core/notify"
	"github.com/colonyops/remind/internal/core/reminder"
	"github.com/colonyops/remind/internal/core/styles"
)

// maxCompletedShown caps the recent-completed section.
const maxCompletedShown = 3

// View implements tea.Model.
func (m *Model) View() string {
	if m.showHelp {
		return m.helpView()
	}
	if m.showStats && m.history != nil {
		return m.statsView()
	}

	var b strings.Builder

	stats := m.app.Reminders.Store().Stats()
	header := fmt.Sprintf("remind · %d today · %d this week", stats.CompletedToday, stats.CompletedThisWeek)
	b.WriteString(styles.Title.Render(header))
	b.WriteString("\n\n")

	rows := m.rows()
	if len(rows) == 0 && !m.adding {
		b.WriteString(styles.Subtle.Render("Nothing to do. Press 'a' to add a task."))
		b.WriteString("\n")
	}

	inBacklog := false
	for i, r := range rows {
		if r.backlog && !inBacklog {
			inBacklog = true
			b.WriteString("\n")
			b.WriteString(styles.Subtle.Render("backlog"))
			b.WriteString("\n")
		}
		b.WriteString(m.renderRow(r, i == m.cursor))
		b.WriteString("\n")
	}

	if m.adding {
		b.WriteString("\n")
		label := "add"
		if m.addBacklog {
			label = "add to backlog"
		}
		b.WriteString(styles.Subtle.Render(label+" › ") + m.input.View())
		b.WriteString("\n")
	}

	if m.showCompleted() {
		if done := m.app.Reminders.Store().Completed(); len(done) > 0 {
			b.WriteString("\n")
			b.WriteString(styles.Subtle.Render("done"))
			b.WriteString("\n")
			for i, r := range done {
				if i == maxCompletedShown {
					break
				}
				b.WriteString("  " + styles.Done.Render(r.Message))
				b.WriteString("\n")
			}
		}
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.renderNotice())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.Subtle.Render("a add · enter complete · d delete · m move · u undo · ? help"))

	return b.String()
}

func (m *Model) renderRow(r row, selected bool) string {
	line := fmt.Sprintf("%s %s", styles.UrgencyBadge(r.r.Urgency), r.r.Message)

	switch {
	case m.app.Reminders.Leaving(r.r.ID):
		line = styles.Leaving.Render(line)
	case selected:
		line = styles.Selected.Render(line)
	}

	cursor := "  "
	if selected {
		cursor = styles.Title.Render("› ")
	}
	return cursor + line
}

func (m *Model) renderNotice() string {
	text := m.notice
	if m.noticeUndo {
		text += styles.Subtle.Render("  (u to undo)")
	}
	if m.noticeLevel == notify.LevelError {
		return styles.NoticeError.Render(text)
	}
	return styles.NoticeInfo.Render(text)
}

func (m *Model) statsView() string {
	h := m.history

	var b strings.Builder
	b.WriteString(styles.Title.Render("Completion history"))
	b.WriteString("\n\n")

	for _, day := range h.Daily {
		bar := styles.UrgencyStyle(reminder.UrgencyToday).Render(strings.Repeat("█", min(day.Count, 30)))
		if day.Count == 0 {
			bar = styles.Subtle.Render("·")
		}
		b.WriteString(fmt.Sprintf("  %s  %s %d\n", day.Date, bar, day.Count))
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  backlog size: %d\n", h.BacklogSize))
	b.WriteString("\n")
	b.WriteString(styles.Subtle.Render("press any key to close"))
	return b.String()
}

func (m *Model) helpView() string {
	rows := [][2]string{
		{"↑/k ↓/j", "move cursor"},
		{"a", "add a task (tab toggles backlog)"},
		{"enter / c", "complete"},
		{"d", "delete"},
		{"m", "move between active list and backlog"},
		{"!", "cycle urgency"},
		{"K / J", "reorder within the list"},
		{"u", "undo the last complete or delete"},
		{"r", "sync with the cloud"},
		{"s", "completion history"},
		{"q", "quit"},
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render("Keys"))
	b.WriteString("\n\n")
	keyStyle := lipgloss.NewStyle().Foreground(styles.Theme.Primary).Width(12)
	for _, r := range rows {
		b.WriteString("  " + keyStyle.Render(r[0]) + r[1] + "\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.Subtle.Render("press any key to close"))
	return b.String()
}
