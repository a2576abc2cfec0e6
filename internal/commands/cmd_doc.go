package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

type DocCmd struct {
	flags *Flags

	plain bool
}

func NewDocCmd(flags *Flags) *DocCmd {
	return &DocCmd{flags: flags}
}

func (cmd *DocCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "doc",
		Usage: "Documentation and guides",
		Description: `Access documentation for remind.

Use 'remind doc workflow' for the active-list workflow guide.
Use 'remind doc sync' for cloud sync setup.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "plain",
				Usage:       "print raw markdown without terminal rendering",
				Destination: &cmd.plain,
			},
		},
		Commands: []*cli.Command{
			cmd.workflowCmd(),
			cmd.syncCmd(),
		},
	})
	return app
}

func (cmd *DocCmd) workflowCmd() *cli.Command {
	return &cli.Command{
		Name:   "workflow",
		Usage:  "Show the active-list workflow guide",
		Action: cmd.runWorkflow,
	}
}

func (cmd *DocCmd) syncCmd() *cli.Command {
	return &cli.Command{
		Name:   "sync",
		Usage:  "Show cloud sync setup instructions",
		Action: cmd.runSync,
	}
}

func (cmd *DocCmd) runWorkflow(_ context.Context, c *cli.Command) error {
	return cmd.render(c, workflowGuide)
}

func (cmd *DocCmd) runSync(_ context.Context, c *cli.Command) error {
	return cmd.render(c, fmt.Sprintf(syncGuide, DefaultConfigPath()))
}

// render writes markdown through glamour when stdout is a terminal, raw
// otherwise.
func (cmd *DocCmd) render(c *cli.Command, markdown string) error {
	w := c.Root().Writer

	if cmd.plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		_, err := fmt.Fprintln(w, markdown)
		return err
	}

	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || width > 100 {
		width = 100
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	out, err := r.Render(markdown)
	if err != nil {
		return fmt.Errorf("render doc: %w", err)
	}

	_, err = fmt.Fprint(w, out)
	return err
}

const workflowGuide = `# The Active List

remind keeps two lists: the **active list** and the **backlog**.

The active list is the handful of tasks you are working on right now. It
has a fixed capacity (default 6, configurable as ` + "`max_actual`" + `). When
you add a task to a full active list, the least important task at the
bottom is bumped to the backlog. When you complete or delete an active
task, the top backlog task is promoted into the freed slot.

## Urgency bands

| Band | Meaning |
|------|---------|
| now | drop everything |
| today | finish before the day ends |
| soon | this week-ish |
| whenever | no pressure |

Urgency is a label, not a schedule. It colors the task and helps you
scan the list; it never moves tasks on its own.

## Everyday commands

` + "```bash" + `
remind add fix the flaky test       # add to active list
remind add -b read that paper       # add to backlog
remind done 12                      # complete
remind undone 12                    # oops, bring it back
remind mv 7 actual                  # pull from backlog
remind                              # open the TUI
` + "```" + `

In the TUI, press ` + "`u`" + ` within a few seconds of completing or deleting
to undo.`

const syncGuide = `# Cloud Sync

remind can sync your reminders through a remote JSON document so
multiple machines share one list.

## Setup

Run ` + "`remind init`" + ` and fill in the cloud section, or edit the config
file directly:

` + "```yaml" + `
# %s
cloud:
  endpoint: https://example.com/remind/document
  token_url: https://example.com/oauth/token
  access_token: "..."
  refresh_token: "..."
  client_id: "..."
  client_secret: "..."
` + "```" + `

The endpoint must accept ` + "`GET`" + ` (returns the document, 404 when it
does not exist yet) and ` + "`PUT`" + ` (replaces it). Expired access tokens
are refreshed automatically through the token URL.

## How merging works

On each sync the local and remote documents are merged:

- a reminder present on both sides keeps the newer copy
- a reminder completed on either side stays completed
- reminders unique to one side are kept

Syncs run at startup and every 5 minutes while the TUI is open
(` + "`sync.interval`" + `), and in the background after every add, edit,
complete, or delete. Run ` + "`remind sync`" + ` to force one.`
