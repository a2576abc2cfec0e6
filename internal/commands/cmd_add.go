package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remind/internal/core/reminder"
	"github.com/colonyops/remind/internal/remind"
)

// AddCmd implements the remind add command.
type AddCmd struct {
	flags *Flags
	app   *remind.App

	urgency string
	backlog bool
}

// NewAddCmd creates a new add command.
func NewAddCmd(flags *Flags, app *remind.App) *AddCmd {
	return &AddCmd{flags: flags, app: app}
}

// Register adds the add command to the application.
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Add a reminder",
		UsageText: "remind add [--urgency <band>] [--backlog] <message>",
		Description: `Adds a reminder to the active list.

New active reminders go on top; the least important active reminder is
bumped to the backlog when the active list is full.

Examples:
  remind add write the release notes
  remind add --urgency now fix the pager
  remind add --backlog read that paper`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "urgency",
				Aliases:     []string{"u"},
				Usage:       "urgency band (now, today, soon, whenever)",
				Value:       string(reminder.UrgencyToday),
				Destination: &cmd.urgency,
			},
			&cli.BoolFlag{
				Name:        "backlog",
				Aliases:     []string{"b"},
				Usage:       "add to the backlog instead of the active list",
				Destination: &cmd.backlog,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	message := joinArgs(c)
	if message == "" {
		return fmt.Errorf("usage: remind add <message>")
	}

	urgency, err := reminder.ParseUrgency(cmd.urgency)
	if err != nil {
		return err
	}

	list := reminder.ListActual
	if cmd.backlog {
		list = reminder.ListBacklog
	}

	if err := cmd.app.Reminders.Add(ctx, message, urgency, list); err != nil {
		return fmt.Errorf("add reminder: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "added")
	return nil
}
