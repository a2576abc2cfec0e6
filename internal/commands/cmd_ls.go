package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remind/internal/core/reminder"
	"github.com/colonyops/remind/internal/remind"
	"github.com/colonyops/remind/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *remind.App

	// flags
	jsonOutput bool
	completed  bool
	all        bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *remind.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List reminders",
		UsageText: "remind ls [--all] [--completed] [--json]",
		Description: `Displays the active list, and optionally the backlog and completed
reminders.

Use --json for machine-readable output, one reminder per line.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "completed",
				Aliases:     []string{"c"},
				Usage:       "include completed reminders",
				Destination: &cmd.completed,
			},
			&cli.BoolFlag{
				Name:        "all",
				Aliases:     []string{"a"},
				Usage:       "include the backlog",
				Destination: &cmd.all,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	st := cmd.app.Reminders.Store()

	active := st.Active()
	var backlog, completed []reminder.Reminder
	if cmd.all {
		backlog = st.Backlog()
	}
	if cmd.completed {
		completed = st.Completed()
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, r := range active {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode reminder: %w", err)
			}
		}
		for _, r := range backlog {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode reminder: %w", err)
			}
		}
		for _, r := range completed {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode reminder: %w", err)
			}
		}
		return nil
	}

	if len(active) == 0 && len(backlog) == 0 && len(completed) == 0 {
		fmt.Fprintf(os.Stderr, "No reminders. Add one with 'remind add <message>'\n")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tURGENCY\tLIST\tMESSAGE")

	for _, r := range active {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Urgency, r.ListType, r.Message)
	}
	for _, r := range backlog {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Urgency, r.ListType, r.Message)
	}
	for _, r := range completed {
		_, _ = fmt.Fprintf(w, "%d\t%s\tdone %s\t%s\n", r.ID, r.Urgency, formatCompleted(r), r.Message)
	}

	return w.Flush()
}

func formatCompleted(r reminder.Reminder) string {
	if r.CompletedAt == nil {
		return ""
	}
	return r.CompletedAt.Local().Format(time.DateOnly)
}
