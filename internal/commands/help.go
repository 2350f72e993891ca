package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"jtask/internal/config"
	"jtask/internal/exitcode"
	"jtask/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "jtask help" }
func (c *HelpCmd) NeedsService() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprintln(out, "Usage:")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  jtask\tList issues assigned to you\n")
	for _, cmd := range DefaultRegistry.All() {
		fmt.Fprintf(tw, "  %s\t%s\n", cmd.Usage(), cmd.Synopsis())
	}
	tw.Flush()
	fmt.Fprint(out, helpFooter)
	return exitcode.Success
}

const helpFooter = `
Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Environment:
  JIRA_URL                     Tracker base URL, e.g. https://example.atlassian.net
  JIRA_EMAIL (or EMAIL)        Account email for basic auth
  JIRA_API_TOKEN (or PASS)     API token for basic auth
  JIRA_ACCESS_TOKEN            OAuth 2.0 bearer token; replaces basic auth

Variables may also be set in ./.env or <config dir>/config.env.
`
