package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remind/internal/core/reminder"
	"github.com/colonyops/remind/internal/remind"
)

// UrgencyCmd implements the remind urgency command.
type UrgencyCmd struct {
	flags *Flags
	app   *remind.App
}

// NewUrgencyCmd creates a new urgency command.
func NewUrgencyCmd(flags *Flags, app *remind.App) *UrgencyCmd {
	return &UrgencyCmd{flags: flags, app: app}
}

// Register adds the urgency command to the application.
func (cmd *UrgencyCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "urgency",
		Usage:     "Set the urgency band of a reminder",
		UsageText: "remind urgency <id> <now|today|soon|whenever>",
		Description: `Changes the urgency band of a pending reminder. Position in the list
is unchanged.

Examples:
  remind urgency 12 now`,
		Action: cmd.run,
	})

	return app
}

func (cmd *UrgencyCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: remind urgency <id> <now|today|soon|whenever>")
	}

	id, err := argID(c, 0)
	if err != nil {
		return err
	}

	urgency, err := reminder.ParseUrgency(c.Args().Get(1))
	if err != nil {
		return err
	}

	if err := cmd.app.Reminders.SetUrgency(ctx, id, urgency); err != nil {
		return fmt.Errorf("set urgency: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "updated")
	return nil
}
