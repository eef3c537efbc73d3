package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/speedrun-hq/intentscope/pkg/circuitbreaker"
	"github.com/speedrun-hq/intentscope/pkg/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve normalized intents, health checks and metrics over HTTP",
		RunE:  runServe,
	}
	serveCmd.Flags().String("port", "", "listen port, overrides METRICS_PORT")
	return serveCmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	port, _ := cmd.Flags().GetString("port")
	if port == "" {
		port = a.cfg.MetricsPort
	}

	breaker := circuitbreaker.NewCircuitBreaker(
		"orderbook",
		a.cfg.CircuitBreaker.Enabled,
		a.cfg.CircuitBreaker.Threshold,
		a.cfg.CircuitBreaker.WindowDuration,
		a.cfg.CircuitBreaker.ResetTimeout,
		a.logger,
	)

	chains := make(map[int]server.ChainClient, len(a.chains))
	for chainID, client := range a.chains {
		chains[chainID] = client
	}

	srv := server.NewServer(port, a.cfg.MetricsAPIKey, a.pipeline, chains, breaker, a.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.Info("Received termination signal, shutting down gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %v", err)
	}
	return <-errCh
}
