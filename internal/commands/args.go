package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"
)

// argID parses positional argument i as a reminder id.
func argID(c *cli.Command, i int) (int64, error) {
	raw := c.Args().Get(i)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid reminder id %q", raw)
	}
	return id, nil
}

// joinArgs concatenates positional arguments into a single message, so
// users can type the task without quoting it.
func joinArgs(c *cli.Command) string {
	return strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
}
