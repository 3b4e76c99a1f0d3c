package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jravasi/mediawiki-wikilog/internal/query"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	DBPath     string

	// Fs reads configuration and .env files and is checked for the database
	// file. Defaults to the OS filesystem.
	Fs afero.Fs
	// WorkDir is searched for .env files. Defaults to ".".
	WorkDir string
	// Trace generates response trace ids. Defaults to UUIDv7Generator.
	Trace TraceGenerator
	// Clock is passed to the query builders. Defaults to the system clock.
	Clock query.Clock
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the wikilog CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(&RootOptions{})
}

// NewRootCommandWith creates the root command around preset options.
// Tests use it to inject a memory filesystem, a fixed clock and fixed
// trace ids.
func NewRootCommandWith(opts *RootOptions) *cobra.Command {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	if opts.Trace == nil {
		opts.Trace = UUIDv7Generator{}
	}

	cmd := &cobra.Command{
		Use:   "wikilog",
		Short: "Wikilog query compiler",
		Long: `Compile wikilog item and comment filters into query descriptors.

Filters are given as flags or as a raw request query string. The command
prints the canonical request parameters, the validated descriptor and its
SQL rendering, and with --db runs the query against a wikilog database.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			setupLogging(cmd, opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "configuration file (default ~/.config/wikilog/config.cue, env WIKILOG_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "wikilog SQLite database to query (env WIKILOG_DB)")

	// Add subcommands
	cmd.AddCommand(NewItemsCommand(opts))
	cmd.AddCommand(NewCommentsCommand(opts))

	return cmd
}

// setupLogging installs a text slog handler on stderr. Debug records from
// the builders and the store are shown with --verbose.
func setupLogging(cmd *cobra.Command, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
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
