package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiaot623/pdfchat/internal/logging"
	"github.com/xiaot623/pdfchat/internal/mockserver"
)

var (
	mockPort   int
	mockScript string
	mockRate   int
)

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run a scripted streaming backend for local testing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := mockserver.Options{TokenRate: cfg.MockTokenRate}
		if cmd.Flags().Changed("rate") {
			opts.TokenRate = mockRate
		}
		port := cfg.MockPort
		if cmd.Flags().Changed("port") {
			port = mockPort
		}
		scriptPath := cfg.MockScript
		if mockScript != "" {
			scriptPath = mockScript
		}
		if scriptPath != "" {
			script, err := mockserver.LoadScript(scriptPath)
			if err != nil {
				return err
			}
			opts.Script = script
		}

		server := mockserver.NewServer(opts)
		addr := fmt.Sprintf(":%d", port)

		errCh := make(chan error, 1)
		go func() {
			logging.Infof("Mock server listening on %s", addr)
			if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case err := <-errCh:
			return fmt.Errorf("mock server failed: %w", err)
		case <-quit:
		}

		logging.Infof("Shutting down mock server (%d open connections)...", server.Hub().GetConnectionCount())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("mock server forced to shutdown: %w", err)
		}
		logging.Infof("Mock server stopped")
		return nil
	},
}

func init() {
	mockServerCmd.Flags().IntVarP(&mockPort, "port", "p", 8000, "Port to listen on (default MOCK_PORT)")
	mockServerCmd.Flags().StringVar(&mockScript, "script", "", "YAML reply script (default MOCK_SCRIPT)")
	mockServerCmd.Flags().IntVar(&mockRate, "rate", 20, "Tokens per second, 0 disables pacing (default MOCK_TOKEN_RATE)")

	rootCmd.AddCommand(mockServerCmd)
}
