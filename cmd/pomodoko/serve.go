package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kzeezee/Pomodoko/internal/api"
)

var (
	adminPort int
	exitAfter time.Duration
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Initialize the stores and serve the command surface on loopback",
		RunE:  runServe,
	}
	cmd.Flags().IntVar(&adminPort, "port", 0, "loopback port for the JSON command server (default from config)")
	cmd.Flags().DurationVar(&exitAfter, "exit-after", 0, "optional runtime; if set, server exits after this duration (testing)")
	return cmd
}

// runServe runs the startup sequence and then serves the JSON command
// surface until interrupted.
func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, log, app, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	port := cfg.Admin.Port
	if adminPort != 0 {
		port = adminPort
	}

	srv := api.NewServer(app.DB, app.Prefs, log, version.String())

	// Bind to 127.0.0.1 only (loopback enforcement)
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return fmt.Errorf("command listener bind failed (loopback only): %w", err)
	}
	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("command server listening on %s", listener.Addr())
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("command server error: %w", err)
		}
	}()
	srv.SetReady(true)

	var timer <-chan time.Time
	if exitAfter > 0 {
		log.Info("exit-after timer set: %s", exitAfter)
		timer = time.After(exitAfter)
	}

	select {
	case <-ctx.Done():
	case <-timer:
	case err = <-errCh:
		log.Error("%v", err)
	}

	srv.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Admin.ShutdownTimeout)
	defer cancel()
	if shutdownErr := httpSrv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warn("shutdown: %v", shutdownErr)
	}
	log.Info("shutdown complete")
	return err
}
