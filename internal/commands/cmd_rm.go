package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remind/internal/remind"
)

// RmCmd implements the remind rm command.
type RmCmd struct {
	flags *Flags
	app   *remind.App
}

// NewRmCmd creates a new rm command.
func NewRmCmd(flags *Flags, app *remind.App) *RmCmd {
	return &RmCmd{flags: flags, app: app}
}

// Register adds the rm command to the application.
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rm",
		Usage:     "Delete a reminder",
		UsageText: "remind rm <id>",
		Description: `Deletes a reminder from any list, pending or completed.

Examples:
  remind rm 12`,
		Action: cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: remind rm <id>")
	}

	id, err := argID(c, 0)
	if err != nil {
		return err
	}

	if err := cmd.app.Reminders.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "deleted")
	return nil
}
