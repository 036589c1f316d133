package commands

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kenz1481/web-deployment-website/internal/bootstrap"
	"github.com/Kenz1481/web-deployment-website/internal/storage/postgres"
)

var (
	serveMigrate    bool
	shutdownTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the pipeline workers and the janitor",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		bootstrap.SetGinMode(cfg.App.Environment)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		if serveMigrate {
			if err := postgres.Migrate(ctx, a.db); err != nil {
				return err
			}
		}

		a.executor.Start()
		if err := a.janitor.Start(); err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           bootstrap.BuildRouter(a.routerDeps()),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Printf("Server starting on port %s (env=%s, version=%s)", cfg.Server.Port, cfg.App.Environment, cfg.App.Version)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
		}

		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[error] operation=http_shutdown error=%v", err)
		}
		a.janitor.Stop()
		if err := a.executor.Shutdown(shutdownCtx); err != nil {
			log.Printf("[error] operation=executor_shutdown error=%v", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "apply the database schema before serving")
	serveCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 2*time.Minute, "time allowed for in-flight pipeline runs to finish")
}
