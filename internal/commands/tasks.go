package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"jtask/internal/config"
	"jtask/internal/exitcode"
	"jtask/internal/output"
	"jtask/internal/service"
)

func init() {
	Register(&TasksCmd{})
}

// TasksCmd implements the tasks command.
// Handles both `jtask` (no args) and `jtask tasks`.
type TasksCmd struct {
	format string
}

// SetFormat sets the output format (for testing).
func (c *TasksCmd) SetFormat(format string) {
	c.format = format
}

func (c *TasksCmd) Name() string       { return "tasks" }
func (c *TasksCmd) Aliases() []string  { return []string{"ls"} }
func (c *TasksCmd) Synopsis() string   { return "List issues assigned to you" }
func (c *TasksCmd) Usage() string      { return "jtask tasks [common flags] [--format text|table|json|yaml]" }
func (c *TasksCmd) NeedsService() bool { return true }

func (c *TasksCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", string(output.Text), "")
}

// Run performs one fetch-and-print cycle. A failed fetch is reported on
// errOut but still exits with Success. --quiet does not hide the
// empty-result line.
func (c *TasksCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	format := output.Text
	if c.format != "" {
		f, err := output.ParseFormat(c.format)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		format = f
	}

	res := svc.SearchIssues(ctx, service.AssignedQuery())
	if !res.OK() {
		output.PrintFailure(errOut, res)
		return exitcode.Success
	}

	if err := output.Render(out, format, res.Issues); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	return exitcode.Success
}
