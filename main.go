package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/remind/internal/commands"
	"github.com/colonyops/remind/internal/core/config"
	"github.com/colonyops/remind/internal/core/eventbus"
	"github.com/colonyops/remind/internal/core/store"
	"github.com/colonyops/remind/internal/data/cloud"
	"github.com/colonyops/remind/internal/data/db"
	"github.com/colonyops/remind/internal/data/stores"
	"github.com/colonyops/remind/internal/remind"
	"github.com/colonyops/remind/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		remindApp = &remind.App{}
		database  *db.DB
		busCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "remind",
		Usage:     "A small task list with an active list and a backlog",
		UsageText: "remind [global options] command [command options]",
		Description: `remind keeps the handful of tasks you are doing right now in a small
active list and parks everything else in a backlog. Reminders sync
through an optional cloud document so every machine shares one list.

Run 'remind' with no arguments to open the interactive task list.
Run 'remind add <message>' to capture a task from anywhere.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("REMIND_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/remind.log)",
				Sources:     cli.EnvVars("REMIND_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("REMIND_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("REMIND_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; stdout belongs to command output.
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "remind.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			database, err = db.Open(cfg.DataDir, db.DefaultOpenOptions())
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			cloudClient := cloud.NewClient(cfg.Cloud.Endpoint, cloud.Credentials{
				AccessToken:  cfg.Cloud.AccessToken,
				RefreshToken: cfg.Cloud.RefreshToken,
				ClientID:     cfg.Cloud.ClientID,
				ClientSecret: cfg.Cloud.ClientSecret,
				TokenURL:     cfg.Cloud.TokenURL,
			})

			gw := stores.NewReminderStore(database, cloudClient, cfg.MaxActual, log.Logger)

			bus := eventbus.New(64)
			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel
			go bus.Start(busCtx)

			eventbus.RegisterDebugLogger(bus, log.Logger)

			svc := remind.NewReminderService(store.New(), gw, bus, log.Logger, cfg.TUI.SettleDelay)
			syncer := remind.NewSyncer(svc, gw, log.Logger, cfg.Sync.Interval)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*remindApp = *remind.NewApp(svc, syncer, bus, cfg, database)

			// Local refresh so every command sees current data; cloud sync
			// stays best-effort and never blocks startup.
			if err := svc.Refresh(ctx); err != nil {
				return ctx, fmt.Errorf("load reminders: %w", err)
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if busCancel != nil {
				busCancel()
			}

			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, remindApp)

	app = commands.NewAddCmd(flags, remindApp).Register(app)
	app = commands.NewLsCmd(flags, remindApp).Register(app)
	app = commands.NewDoneCmd(flags, remindApp).Register(app)
	app = commands.NewRmCmd(flags, remindApp).Register(app)
	app = commands.NewMvCmd(flags, remindApp).Register(app)
	app = commands.NewUrgencyCmd(flags, remindApp).Register(app)
	app = commands.NewEditCmd(flags, remindApp).Register(app)
	app = commands.NewReorderCmd(flags, remindApp).Register(app)
	app = commands.NewStatsCmd(flags, remindApp).Register(app)
	app = commands.NewSyncCmd(flags, remindApp).Register(app)
	app = commands.NewDocCmd(flags).Register(app)
	app = commands.NewInitCmd(flags).Register(app)
	app = tuiCmd.Register(app)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'remind --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
