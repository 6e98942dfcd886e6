package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_LenientOnlyServesUntilCancelled(t *testing.T) {
	path := writeExpectations(t, `
expectations:
  - endpoint: health
    lenient:
      respond:
        - body: up
`)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := runServe(ctx, &serveOptions{mcpAddr: "127.0.0.1:0"}, []string{path})
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestServe_VerificationFailure(t *testing.T) {
	path := writeExpectations(t, `
settings:
  assertion_timeout: 100ms
expectations:
  - endpoint: orders
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := runServe(ctx, &serveOptions{mcpAddr: "127.0.0.1:0", metricsAddr: "127.0.0.1:0"}, []string{path})
	require.Error(t, err)
	assert.Equal(t, ExitCodeVerification, getExitCode(err))
}

func TestServe_LoadError(t *testing.T) {
	err := runServe(context.Background(), &serveOptions{}, []string{"does-not-exist.yaml"})
	require.Error(t, err)
	assert.Equal(t, ExitCodeConfiguration, getExitCode(err))
}

func TestServe_InvalidTransportFlag(t *testing.T) {
	path := writeExpectations(t, `
expectations:
  - endpoint: orders
`)
	err := runServe(context.Background(), &serveOptions{transport: "smtp"}, []string{path})
	require.Error(t, err)
	assert.Equal(t, ExitCodeConfiguration, getExitCode(err))
}
