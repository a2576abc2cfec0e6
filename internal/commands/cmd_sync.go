package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remind/internal/remind"
)

// SyncCmd implements the remind sync command.
type SyncCmd struct {
	flags *Flags
	app   *remind.App
}

// NewSyncCmd creates a new sync command.
func NewSyncCmd(flags *Flags, app *remind.App) *SyncCmd {
	return &SyncCmd{flags: flags, app: app}
}

// Register adds the sync command to the application.
func (cmd *SyncCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "sync",
		Usage:     "Sync with the configured cloud document",
		UsageText: "remind sync",
		Description: `Pulls the remote document, merges it with local state, and pushes the
merged result back. Requires cloud credentials in the config file; run
'remind init' to set them up.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *SyncCmd) run(ctx context.Context, c *cli.Command) error {
	if !cmd.flags.Config.CloudEnabled() {
		return fmt.Errorf("cloud sync is not configured; run 'remind init'")
	}

	if err := cmd.app.Syncer.Startup(ctx); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "synced")
	return nil
}
