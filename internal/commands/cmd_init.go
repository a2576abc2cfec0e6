package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/remind/internal/core/config"
)

// InitCmd implements the remind init command.
type InitCmd struct {
	flags *Flags
	yes   bool
	force bool
}

// NewInitCmd creates a new init command.
func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

// Register adds the init command to the application.
func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "init",
		Usage:     "Initialize remind configuration with an interactive wizard",
		UsageText: "remind init [options]",
		Description: `Sets up remind for first-time use.

The wizard writes a config file with the active list capacity, the
sync interval, and optional cloud sync credentials.

Use --yes to accept all defaults without prompts.
Use --force to overwrite existing configuration.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "accept defaults without prompting",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "force",
				Aliases:     []string{"f"},
				Usage:       "overwrite existing configuration",
				Destination: &cmd.force,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *InitCmd) run(_ context.Context, c *cli.Command) error {
	cfg := config.DefaultConfig()
	cfg.DataDir = cmd.flags.DataDir

	if _, err := os.Stat(cmd.flags.ConfigPath); err == nil && !cmd.force {
		if cmd.yes {
			return fmt.Errorf("config exists at %s; use --force to overwrite", cmd.flags.ConfigPath)
		}

		var overwrite bool
		err := huh.NewConfirm().
			Title("Config file already exists").
			Description(cmd.flags.ConfigPath + "\nOverwrite?").
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			_, _ = fmt.Fprintln(c.Root().Writer, "init cancelled")
			return nil
		}
	}

	if !cmd.yes {
		if err := cmd.promptUser(&cfg); err != nil {
			return err
		}
	}

	if err := cfg.ValidateDeep(cmd.flags.ConfigPath); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cmd.flags.ConfigPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := cfg.Save(cmd.flags.ConfigPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "created config: %s\n", cmd.flags.ConfigPath)
	_, _ = fmt.Fprintln(c.Root().Writer, "run 'remind' to open the task list")
	return nil
}

func (cmd *InitCmd) promptUser(cfg *config.Config) error {
	maxActual := strconv.Itoa(cfg.MaxActual)
	interval := cfg.Sync.Interval.String()
	var enableCloud bool

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Active list capacity").
			Description("How many tasks can be in the active list at once (1-20)").
			Value(&maxActual).
			Validate(func(s string) error {
				n, err := strconv.Atoi(s)
				if err != nil || n < 1 || n > 20 {
					return fmt.Errorf("enter a number between 1 and 20")
				}
				return nil
			}),
		huh.NewInput().
			Title("Background sync interval").
			Description("How often the TUI pulls remote changes, e.g. 5m").
			Value(&interval).
			Validate(func(s string) error {
				d, err := time.ParseDuration(s)
				if err != nil || d <= 0 {
					return fmt.Errorf("enter a positive duration like 5m")
				}
				return nil
			}),
		huh.NewConfirm().
			Title("Configure cloud sync?").
			Description("Share your reminders across machines through a remote document").
			Value(&enableCloud),
	))
	if err := form.Run(); err != nil {
		return err
	}

	cfg.MaxActual, _ = strconv.Atoi(maxActual)
	cfg.Sync.Interval, _ = time.ParseDuration(interval)

	if !enableCloud {
		return nil
	}

	cloudForm := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Document endpoint").
			Description("URL accepting GET and PUT for the reminder document").
			Value(&cfg.Cloud.Endpoint),
		huh.NewInput().
			Title("Token URL").
			Description("OAuth endpoint used to refresh expired access tokens").
			Value(&cfg.Cloud.TokenURL),
		huh.NewInput().
			Title("Client ID").
			Value(&cfg.Cloud.ClientID),
		huh.NewInput().
			Title("Client secret").
			EchoMode(huh.EchoModePassword).
			Value(&cfg.Cloud.ClientSecret),
		huh.NewInput().
			Title("Access token").
			EchoMode(huh.EchoModePassword).
			Value(&cfg.Cloud.AccessToken),
		huh.NewInput().
			Title("Refresh token").
			EchoMode(huh.EchoModePassword).
			Value(&cfg.Cloud.RefreshToken),
	))
	return cloudForm.Run()
}
