package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remind/internal/core/reminder"
	"github.com/colonyops/remind/internal/remind"
)

// MvCmd implements the remind mv command.
type MvCmd struct {
	flags *Flags
	app   *remind.App
}

// NewMvCmd creates a new mv command.
func NewMvCmd(flags *Flags, app *remind.App) *MvCmd {
	return &MvCmd{flags: flags, app: app}
}

// Register adds the mv command to the application.
func (cmd *MvCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "mv",
		Usage:     "Move a reminder between lists",
		UsageText: "remind mv <id> <actual|backlog>",
		Description: `Moves a pending reminder between the active list and the backlog.
Moving into a full active list bumps its least important reminder to
the backlog.

Examples:
  remind mv 12 actual
  remind mv 12 backlog`,
		Action: cmd.run,
	})

	return app
}

func (cmd *MvCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: remind mv <id> <actual|backlog>")
	}

	id, err := argID(c, 0)
	if err != nil {
		return err
	}

	list, err := reminder.ParseListType(c.Args().Get(1))
	if err != nil {
		return err
	}

	if err := cmd.app.Reminders.Move(ctx, id, list); err != nil {
		return fmt.Errorf("move reminder: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "moved")
	return nil
}
