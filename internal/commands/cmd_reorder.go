package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remind/internal/core/reminder"
	"github.com/colonyops/remind/internal/remind"
)

// ReorderCmd implements the remind reorder command.
type ReorderCmd struct {
	flags *Flags
	app   *remind.App

	backlog bool
}

// NewReorderCmd creates a new reorder command.
func NewReorderCmd(flags *Flags, app *remind.App) *ReorderCmd {
	return &ReorderCmd{flags: flags, app: app}
}

// Register adds the reorder command to the application.
func (cmd *ReorderCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "reorder",
		Usage:     "Reorder reminders within a list",
		UsageText: "remind reorder [--backlog] <id> [<id> ...]",
		Description: `Rewrites the order of a list to match the given ids. Reminders in the
list but missing from the arguments keep their relative order at the
end, so a partial id list never loses anything.

Examples:
  remind reorder 3 1 2
  remind reorder --backlog 9 7`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "backlog",
				Aliases:     []string{"b"},
				Usage:       "reorder the backlog instead of the active list",
				Destination: &cmd.backlog,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ReorderCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: remind reorder <id> [<id> ...]")
	}

	ids := make([]int64, 0, c.NArg())
	for i := 0; i < c.NArg(); i++ {
		id, err := argID(c, i)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	list := reminder.ListActual
	if cmd.backlog {
		list = reminder.ListBacklog
	}

	if err := cmd.app.Reminders.Reorder(ctx, list, ids); err != nil {
		return fmt.Errorf("reorder reminders: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "reordered")
	return nil
}
