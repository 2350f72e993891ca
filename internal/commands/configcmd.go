package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"jtask/internal/config"
	"jtask/internal/exitcode"
	"jtask/internal/service"
)

func init() {
	Register(&ConfigCmd{})
}

// ConfigCmd prints the effective configuration with secrets masked.
type ConfigCmd struct{}

func (c *ConfigCmd) Name() string       { return "config" }
func (c *ConfigCmd) Aliases() []string  { return nil }
func (c *ConfigCmd) Synopsis() string   { return "Print the effective configuration" }
func (c *ConfigCmd) Usage() string      { return "jtask config [common flags]" }
func (c *ConfigCmd) NeedsService() bool { return false }

func (c *ConfigCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ConfigCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	data, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	fmt.Fprint(out, string(data))
	if !cfg.HasCredentials() && !cfg.Quiet {
		fmt.Fprintf(errOut, "warning: no credentials configured; set them in the environment or %s\n", cfg.EnvFilePath())
	}
	return exitcode.Success
}
