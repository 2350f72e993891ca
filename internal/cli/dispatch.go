package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"jtask/internal/commands"
	"jtask/internal/config"
	"jtask/internal/exitcode"
	"jtask/internal/logging"
	"jtask/internal/service"
)

// DefaultCommand runs when no command is given.
const DefaultCommand = "tasks"

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, log *zap.Logger) (service.Service, error)

// ConfigLoader builds the Config for a run from the --config value.
type ConfigLoader func(configDir string) (*config.Config, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
	load     ConfigLoader
	fallback ConfigLoader
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
// Configuration is loaded with config.New, or with config.FromEnv when a
// dotenv file cannot be read.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
		load:     config.New,
		fallback: config.FromEnv,
	}
}

// WithConfigLoader replaces the config loader (for testing).
func (d *Dispatcher) WithConfigLoader(load ConfigLoader) *Dispatcher {
	d.load = load
	return d
}

// WithFallbackLoader replaces the loader used after the main one fails (for testing).
func (d *Dispatcher) WithFallbackLoader(load ConfigLoader) *Dispatcher {
	d.fallback = load
	return d
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args, or flags only -> the default command
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return d.dispatch(ctx, DefaultCommand, args, out, errOut)
	}
	return d.dispatch(ctx, args[0], args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}

	// A positional that still looks like a flag came after the first positional.
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	// An unreadable dotenv file is reported but not fatal: the run continues
	// with the environment alone.
	cfg, err := d.load(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "warning: %s; using environment only\n", err)
		if cfg, err = d.fallback(configDir); err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.UserError
		}
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	log := logging.New(debug, errOut)
	defer log.Sync()
	log.Debug("dispatching", zap.String("command", cmd.Name()), zap.String("config_dir", cfg.Dir))

	var svc service.Service
	if cmd.NeedsService() {
		if d.factory == nil {
			fmt.Fprintln(errOut, "error: backend error: no tracker service available")
			return exitcode.BackendError
		}
		if !cfg.HasCredentials() {
			log.Warn("no credentials configured", zap.String("env_file", cfg.EnvFilePath()))
		}
		svc, err = d.factory(ctx, cfg, log)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				fmt.Fprintf(errOut, "error: auth error: %s\n", err)
				return exitcode.AuthError
			}
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
	}

	return cmd.Run(ctx, cfg, svc, positionalArgs, out, errOut)
}

// flagError rewrites flag package errors into the CLI's wording.
func flagError(err error) string {
	errStr := err.Error()

	if name, ok := strings.CutPrefix(errStr, "flag needs an argument: "); ok {
		return "flag needs an argument: " + name
	}
	if name, ok := strings.CutPrefix(errStr, "flag provided but not defined: "); ok {
		return "unknown flag: " + name
	}
	return errStr
}
