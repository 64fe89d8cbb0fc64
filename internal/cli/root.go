package cli

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the brace CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "brace",
		Short: "BRACE combinatorial auctions",
		Long: `Run budget-relaxed approximate competitive equilibrium (BRACE) auctions
over indivisible goods, attest their results, and validate claimed results.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			configureLogging(opts, cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// configureLogging sends library logs to stderr in verbose mode and drops them otherwise.
func configureLogging(opts *RootOptions, stderr io.Writer) {
	if opts.Verbose {
		log.SetOutput(stderr)
		return
	}
	log.SetOutput(io.Discard)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
