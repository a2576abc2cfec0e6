package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remind/internal/remind"
)

// DoneCmd implements the remind done and undone commands.
type DoneCmd struct {
	flags *Flags
	app   *remind.App
}

// NewDoneCmd creates a new done command.
func NewDoneCmd(flags *Flags, app *remind.App) *DoneCmd {
	return &DoneCmd{flags: flags, app: app}
}

// Register adds the done and undone commands to the application.
func (cmd *DoneCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "done",
			Usage:     "Complete a reminder",
			UsageText: "remind done <id>",
			Description: `Marks a reminder as completed. If the active list was full, the top
backlog reminder is promoted into the freed slot.

Examples:
  remind done 12`,
			Action: cmd.runDone,
		},
		&cli.Command{
			Name:      "undone",
			Usage:     "Restore a completed reminder",
			UsageText: "remind undone <id>",
			Description: `Returns a completed reminder to pending with its original urgency
and list.

Examples:
  remind undone 12`,
			Action: cmd.runUndone,
		},
	)

	return app
}

func (cmd *DoneCmd) runDone(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: remind done <id>")
	}

	id, err := argID(c, 0)
	if err != nil {
		return err
	}

	if err := cmd.app.Reminders.Complete(ctx, id); err != nil {
		return fmt.Errorf("complete reminder: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "completed")
	return nil
}

func (cmd *DoneCmd) runUndone(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: remind undone <id>")
	}

	id, err := argID(c, 0)
	if err != nil {
		return err
	}

	if err := cmd.app.Reminders.Uncomplete(ctx, id); err != nil {
		return fmt.Errorf("restore reminder: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "restored")
	return nil
}
