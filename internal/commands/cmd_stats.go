package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remind/internal/core/reminder"
	"github.com/colonyops/remind/internal/core/styles"
	"github.com/colonyops/remind/internal/remind"
	"github.com/colonyops/remind/pkg/iojson"
)

// StatsCmd implements the remind stats command.
type StatsCmd struct {
	flags *Flags
	app   *remind.App

	history    bool
	jsonOutput bool
}

// NewStatsCmd creates a new stats command.
func NewStatsCmd(flags *Flags, app *remind.App) *StatsCmd {
	return &StatsCmd{flags: flags, app: app}
}

// Register adds the stats command to the application.
func (cmd *StatsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "stats",
		Usage:     "Show completion statistics",
		UsageText: "remind stats [--history] [--json]",
		Description: `Shows how many reminders were completed today and this week.

With --history, also shows daily completions for the last two weeks,
the hour-of-day and weekday distributions, and the backlog size.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "history",
				Aliases:     []string{"H"},
				Usage:       "include historical activity",
				Destination: &cmd.history,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *StatsCmd) run(ctx context.Context, c *cli.Command) error {
	stats := cmd.app.Reminders.Store().Stats()
	out := c.Root().Writer

	if !cmd.history {
		if cmd.jsonOutput {
			return iojson.WriteWith(out, out, stats)
		}
		_, _ = fmt.Fprintf(out, "completed today:     %d\n", stats.CompletedToday)
		_, _ = fmt.Fprintf(out, "completed this week: %d\n", stats.CompletedThisWeek)
		return nil
	}

	history, err := cmd.app.Reminders.History(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	if cmd.jsonOutput {
		return iojson.WriteWith(out, out, struct {
			CompletedToday    int `json:"completed_today"`
			CompletedThisWeek int `json:"completed_this_week"`
			History           any `json:"history"`
		}{stats.CompletedToday, stats.CompletedThisWeek, history})
	}

	_, _ = fmt.Fprintf(out, "completed today:     %d\n", stats.CompletedToday)
	_, _ = fmt.Fprintf(out, "completed this week: %d\n", stats.CompletedThisWeek)
	_, _ = fmt.Fprintf(out, "backlog size:        %d\n\n", history.BacklogSize)

	_, _ = fmt.Fprintln(out, styles.Title.Render("Last 14 days"))
	for _, day := range history.Daily {
		_, _ = fmt.Fprintf(out, "  %s  %s %d\n", day.Date, bar(day.Count), day.Count)
	}

	_, _ = fmt.Fprintln(out, "\n"+styles.Title.Render("By weekday"))
	weekdays := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	for i, name := range weekdays {
		_, _ = fmt.Fprintf(out, "  %s  %s %d\n", name, bar(history.Weekday[i]), history.Weekday[i])
	}

	return nil
}

func bar(n int) string {
	if n == 0 {
		return styles.Subtle.Render("·")
	}
	if n > 40 {
		n = 40
	}
	return styles.UrgencyStyle(reminder.UrgencyToday).Render(strings.Repeat("█", n))
}
