package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"jtask/internal/config"
	"jtask/internal/exitcode"
	"jtask/internal/service"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd checks the configured credentials against the tracker.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string       { return "whoami" }
func (c *WhoamiCmd) Aliases() []string  { return nil }
func (c *WhoamiCmd) Synopsis() string   { return "Show the account the credentials belong to" }
func (c *WhoamiCmd) Usage() string      { return "jtask whoami [common flags]" }
func (c *WhoamiCmd) NeedsService() bool { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasCredentials() {
		fmt.Fprintln(errOut, "error: no credentials configured (set JIRA_EMAIL and JIRA_API_TOKEN, or JIRA_ACCESS_TOKEN)")
		return exitcode.AuthError
	}

	u, err := svc.Myself(ctx)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			fmt.Fprintf(errOut, "error: auth error: %v\n", err)
			return exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	name := u.DisplayName
	if u.EmailAddress != "" {
		name = fmt.Sprintf("%s <%s>", name, u.EmailAddress)
	}
	fmt.Fprintf(out, "%s (%s)\n", name, u.AccountID)
	return exitcode.Success
}
