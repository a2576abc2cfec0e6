package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remind/internal/core/reminder"
	"github.com/colonyops/remind/internal/remind"
)

// EditCmd implements the remind edit command.
type EditCmd struct {
	flags *Flags
	app   *remind.App

	urgency string
}

// NewEditCmd creates a new edit command.
func NewEditCmd(flags *Flags, app *remind.App) *EditCmd {
	return &EditCmd{flags: flags, app: app}
}

// Register adds the edit command to the application.
func (cmd *EditCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "edit",
		Usage:     "Rewrite a reminder's message",
		UsageText: "remind edit [--urgency <band>] <id> <message>",
		Description: `Rewrites the message of a pending reminder, and optionally its
urgency. The current urgency is kept when --urgency is omitted.

Examples:
  remind edit 12 write the Q3 release notes
  remind edit --urgency soon 12 read that paper properly`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "urgency",
				Aliases:     []string{"u"},
				Usage:       "new urgency band (now, today, soon, whenever)",
				Destination: &cmd.urgency,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *EditCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: remind edit <id> <message>")
	}

	id, err := argID(c, 0)
	if err != nil {
		return err
	}

	message := strings.TrimSpace(strings.Join(c.Args().Slice()[1:], " "))

	current, ok := cmd.app.Reminders.Store().Find(id)
	if !ok || current.IsCompleted {
		return fmt.Errorf("no pending reminder with id %d", id)
	}

	urgency := current.Urgency
	if cmd.urgency != "" {
		urgency, err = reminder.ParseUrgency(cmd.urgency)
		if err != nil {
			return err
		}
	}

	if err := cmd.app.Reminders.Update(ctx, id, message, urgency); err != nil {
		return fmt.Errorf("edit reminder: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "updated")
	return nil
}
