package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"mockspec/internal/config"
	"mockspec/internal/expectation"
	"mockspec/internal/feeder"
)

func TestSetVersion(t *testing.T) {
	testVersion := "1.2.3-test"
	SetVersion(testVersion)

	if GetVersion() != testVersion {
		t.Errorf("Expected version to be %s, got %s", testVersion, GetVersion())
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "mockspec" {
		t.Errorf("Expected Use to be 'mockspec', got %s", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}

	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}

	if rootCmd.PersistentFlags().Lookup("log-level") == nil {
		t.Error("Expected --log-level persistent flag")
	}
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "mockspec version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	if err := testCmd.Execute(); err != nil {
		t.Fatalf("Error executing version command: %v", err)
	}

	if buf.String() != "mockspec version 1.0.0\n" {
		t.Errorf("Expected version output %q, got %q", "mockspec version 1.0.0\n", buf.String())
	}
}

func TestSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		found[cmd.Name()] = true
	}

	for _, expected := range []string{"version", "validate", "serve"} {
		if !found[expected] {
			t.Errorf("Expected subcommand %s to be registered", expected)
		}
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitCodeSuccess},
		{"generic", errors.New("boom"), ExitCodeError},
		{"configuration", fmt.Errorf("a.yaml: %w", &expectation.ConfigurationError{Endpoint: "orders"}), ExitCodeConfiguration},
		{"load", &config.LoadError{Path: "a.yaml", Err: errors.New("bad yaml")}, ExitCodeConfiguration},
		{"merge conflict", fmt.Errorf("b.yaml: %w", &expectation.MergeConflictError{Endpoint: "orders"}), ExitCodeMergeConflict},
		{"verification", errors.Join(&feeder.VerificationError{Endpoint: "orders", Expected: 1}), ExitCodeVerification},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}
