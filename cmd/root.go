package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mockspec/internal/config"
	"mockspec/internal/expectation"
	"mockspec/internal/feeder"
	"mockspec/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfiguration indicates an invalid or unreadable expectation file.
	ExitCodeConfiguration = 2
	// ExitCodeMergeConflict indicates parts of an endpoint that cannot be merged.
	ExitCodeMergeConflict = 3
	// ExitCodeVerification indicates that served endpoints did not receive what they expected.
	ExitCodeVerification = 4
)

// logLevel and logWriter hold the CLI logger setup so commands that switch
// the logger into capture mode can restore it afterwards.
var (
	logLevel            = logging.LevelInfo
	logWriter io.Writer = os.Stderr
)

// rootCmd represents the base command for the mockspec application.
var rootCmd = &cobra.Command{
	Use:   "mockspec",
	Short: "Declarative mock endpoints for message driven tests",
	Long: `mockspec loads declarative expectation files, merges the parts authored
for each endpoint into one definition and either validates them or serves them
over MCP or NATS so a system under test can be exercised against them.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		flag, _ := cmd.Flags().GetString("log-level")
		level, err := logging.ParseLogLevel(flag)
		if err != nil {
			return err
		}
		logLevel, logWriter = level, cmd.ErrOrStderr()
		logging.InitForCLI(logLevel, logWriter)
		return nil
	},
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// The command context is cancelled on SIGINT or SIGTERM.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mockspec version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	if expectation.IsMergeConflict(err) {
		return ExitCodeMergeConflict
	}

	if expectation.IsConfigurationError(err) || config.IsLoadError(err) {
		return ExitCodeConfiguration
	}

	if feeder.IsVerificationError(err) || errors.Is(err, feeder.ErrUnexpectedMessage) {
		return ExitCodeVerification
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newServeCmd())
}
