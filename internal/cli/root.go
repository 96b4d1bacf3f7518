package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/blobrelay/internal/bridge"
	"github.com/roach88/blobrelay/internal/config"
	"github.com/roach88/blobrelay/internal/relay"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json" | "yaml"

	// Config is resolved before any subcommand runs.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the blobrelay CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "blobrelay",
		Short: "blobrelay - persistent record store with a host relay",
		Long: `A local record store for JSON payloads.

Values are stored under millisecond timestamp keys, read back in key
order, and relayed to a host page as a single indexeddbData event.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().String(config.KeyDB, config.DefaultDBPath, "path to SQLite database")
	cmd.PersistentFlags().String(config.KeyLogLevel, config.DefaultLogLevel, "log level (debug|info|warn|error)")
	cmd.PersistentFlags().String(config.KeyLogFormat, config.DefaultLogFormat, "log format (text|json)")

	cmd.AddCommand(NewPutCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewRelayCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// resolve loads configuration from flags, environment and .env files
// and installs the process logger. Logs go to stderr so that stdout
// stays machine-readable.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	loader := config.NewLoader()
	if err := loader.BindFlags(cmd); err != nil {
		return WrapExitError(ExitCommandError, "failed to read flags", err)
	}

	conf, err := loader.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if o.Verbose && !cmd.Flags().Changed(config.KeyLogLevel) {
		conf.LogLevel = "debug"
	}

	o.Config = conf
	o.Logger = conf.InstallLogger(cmd.ErrOrStderr())
	return nil
}

// formatter returns an OutputFormatter bound to cmd's writers.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// openBridge builds a bridge over the configured database.
// The caller must close the returned handle.
func (o *RootOptions) openBridge(emitter relay.Emitter, opts ...bridge.Option) (*bridge.Bridge, *bridge.Handle) {
	h := bridge.NewHandle(bridge.PathOpener(o.Config.DBPath), bridge.WithHandleLogger(o.Logger))
	opts = append([]bridge.Option{bridge.WithLogger(o.Logger)}, opts...)
	return bridge.New(h, emitter, opts...), h
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
