package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"mockspec/internal/config"
	"mockspec/internal/expectation"
	"mockspec/internal/feeder"
	"mockspec/internal/formatting"
	"mockspec/internal/transport"
	"mockspec/internal/transport/mcpfeed"
	"mockspec/internal/transport/natsfeed"
	"mockspec/pkg/logging"
)

type serveOptions struct {
	transport   string
	natsURL     string
	mcpAddr     string
	metricsAddr string
}

// newServeCmd creates the command that serves merged definitions until every
// endpoint settled its assertions.
func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve <path>...",
		Short: "Serve mock endpoints and verify the messages they receive",
		Long: `Loads and merges expectation files like 'validate', then attaches every
endpoint to its transport:

  mcp   each endpoint is an MCP tool, served on stdio or on --mcp-addr
  nats  each endpoint subscribes to its subject and answers requests

The command returns once every endpoint received its expected messages or
its assertion timeout elapsed, and exits non-zero if any endpoint failed
verification. When no endpoint expects a message, as with a suite of lenient
stubs only, the endpoints are served until the command is interrupted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", "", "Default transport for endpoints without feeder wiring (mcp, nats)")
	cmd.Flags().StringVar(&opts.natsURL, "nats-url", "", "NATS server URL")
	cmd.Flags().StringVar(&opts.mcpAddr, "mcp-addr", "", "Serve MCP over streamable HTTP on this address instead of stdio")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address")
	return cmd
}

func runServe(ctx context.Context, opts *serveOptions, paths []string) error {
	loader := config.NewLoader(&config.Settings{
		Transport: opts.transport,
		NATSURL:   opts.natsURL,
		MCPAddr:   opts.mcpAddr,
	})
	suite, err := loader.Load(ctx, paths...)
	if err != nil {
		return err
	}
	settings := suite.Settings
	defs := suite.Definitions()

	registry := prometheus.NewRegistry()
	runtime, err := feeder.NewRuntime(defs, feeder.WithRegisterer(registry))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	serveErr := make(chan error, 3)

	if opts.metricsAddr != "" {
		go func() {
			if err := serveMetrics(ctx, opts.metricsAddr, registry); err != nil {
				serveErr <- err
			}
		}()
	}

	if natsDefs := transport.Select(defs, transport.NATS, settings.Transport); len(natsDefs) > 0 {
		nc, err := natsfeed.Connect(settings.NATSURL, settings.ServerName)
		if err != nil {
			return err
		}
		defer nc.Close()

		feed := natsfeed.New(nc, runtime)
		if err := feed.Start(ctx, natsDefs); err != nil {
			return err
		}
		defer feed.Close()
	}

	if mcpDefs := transport.Select(defs, transport.MCP, settings.Transport); len(mcpDefs) > 0 {
		server := mcpfeed.NewServer(settings.ServerName, GetVersion(), runtime, mcpDefs)
		logging.Debug("Serve", "MCP tools: %s", strings.Join(server.Tools(), ", "))
		go func() {
			var err error
			if settings.MCPAddr != "" {
				err = server.ServeHTTP(ctx, settings.MCPAddr, nil)
			} else {
				err = server.ServeStdio()
			}
			if err != nil {
				serveErr <- err
			}
		}()
	}

	logging.Info("Serve", "Serving %d endpoints", len(defs))
	for _, s := range formatting.Summarize(defs, settings.Transport) {
		logging.Debug("Serve", "Endpoint %s on %s expects %d messages", s.Endpoint, s.Transport, s.Expected)
	}

	if !expectsMessages(defs) {
		logging.Info("Serve", "No endpoint expects messages, serving until interrupted")
		select {
		case <-ctx.Done():
			return nil
		case err := <-serveErr:
			return fmt.Errorf("transport stopped: %w", err)
		}
	}

	awaitErr := make(chan error, 1)
	go func() { awaitErr <- runtime.Await(ctx) }()

	select {
	case err := <-awaitErr:
		return err
	case err := <-serveErr:
		return fmt.Errorf("transport stopped: %w", err)
	}
}

func expectsMessages(defs []*expectation.Definition) bool {
	for _, def := range defs {
		if def.ExpectedMessageCount() > 0 {
			return true
		}
	}
	return false
}

func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logging.Info("Serve", "Metrics available on http://%s/metrics", listener.Addr())
	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
