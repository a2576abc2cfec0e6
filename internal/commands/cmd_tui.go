package commands

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/remind/internal/remind"
	"github.com/colonyops/remind/internal/tui"
)

// TuiCmd runs the interactive task list. It is both the default action and
// an explicit subcommand.
type TuiCmd struct {
	flags *Flags
	app   *remind.App
}

// NewTuiCmd creates a new tui command.
func NewTuiCmd(flags *Flags, app *remind.App) *TuiCmd {
	return &TuiCmd{flags: flags, app: app}
}

// Register adds the tui command to the application.
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "tui",
		Usage:       "Open the interactive task list",
		Description: "Opens the task list. Running remind with no arguments does the same.",
		Action:      cmd.Run,
	})
	return app
}

// Run starts the TUI. The initial cloud merge happens in the background so
// first paint never waits on the network.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	go func() {
		syncCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := cmd.app.Syncer.Startup(syncCtx); err != nil {
			log.Warn().Err(err).Msg("startup sync failed")
		}
	}()

	return tui.Run(ctx, cmd.app, log.Logger)
}
