package cli

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
	"go.uber.org/zap"

	"github.com/ahmedmhm/bimdiff/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored runs over HTTP",
	Long:  `Start a read-only HTTP API over the run store, with health and Prometheus metrics endpoints.`,
	Run:   runServe,
}

var (
	serveDB   string
	serveAddr string
)

func init() {
	serveCmd.Flags().StringVar(&serveDB, "db", "", "Store database path (overrides config)")
	serveCmd.Flags().StringVar(&serveAddr, "listen", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if serveDB != "" {
		cfg.DatabasePath = serveDB
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}

	logger := newLogger()
	defer logger.Sync()

	st := openStore(cfg.DatabasePath)
	defer st.Close()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.New(st, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.ListenAddr))
		fmt.Printf("Listening on http://%s\n", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			exitError("server failed: %v", err)
		}
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			exitError("shutdown failed: %v", err)
		}
	}
}
