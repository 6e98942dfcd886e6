package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mockspec/internal/config"
	"mockspec/internal/formatting"
	"mockspec/internal/watch"
	"mockspec/pkg/logging"
)

type validateOptions struct {
	output string
	watch  bool
}

// newValidateCmd creates the command that loads and merges expectation files
// and prints the resulting definitions.
func newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Load and merge expectation files and print the merged endpoints",
		Long: `Loads every expectation file found in the given files, directories or
doublestar patterns (e.g. "mocks/**/*.yaml"), merges the parts of each endpoint
in path order and prints the merged definitions together with any advisories.

With --watch the files are validated again whenever they change.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := formatting.ParseFormat(opts.output)
			if err != nil {
				return err
			}

			err = runValidate(cmd.Context(), cmd.OutOrStdout(), format, args)
			if !opts.watch {
				return err
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}

			w := watch.New(args, 0, func(ctx context.Context) {
				fmt.Fprintln(cmd.OutOrStdout())
				if err := runValidate(ctx, cmd.OutOrStdout(), format, args); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				}
			})
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "table", "Output format (table, json, yaml)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Validate again whenever the files change")
	return cmd
}

// runValidate loads paths with warnings captured so they can be listed
// beneath the summary.
func runValidate(ctx context.Context, out io.Writer, format formatting.OutputFormat, paths []string) error {
	entries := logging.InitForCapture(logging.LevelWarn)
	suite, err := config.NewLoader(nil).Load(ctx, paths...)
	advisories := logging.Drain(entries)
	logging.InitForCLI(logLevel, logWriter)

	if err != nil {
		return err
	}

	if err := formatting.Write(out, format, formatting.Summarize(suite.Definitions(), suite.Settings.Transport)); err != nil {
		return err
	}
	if format == formatting.FormatTable {
		formatting.WriteAdvisories(out, advisories)
	}
	return nil
}
