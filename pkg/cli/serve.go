package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/seion-lab/kintai/pkg/cli/config"
	httpctrl "github.com/seion-lab/kintai/pkg/controller/http"
	"github.com/seion-lab/kintai/pkg/usecase"
	"github.com/seion-lab/kintai/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var demoMode bool
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("KINTAI_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "demo",
			Usage:       "Enable synthetic data utilities (record regeneration)",
			Sources:     cli.EnvVars("KINTAI_DEMO"),
			Destination: &demoMode,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo,
				usecase.WithDemoMode(demoMode),
			)

			// Warm the cache before accepting scans. A failed load degrades
			// to an empty cache; the next ListRecords rebuilds it.
			if err := uc.Initialize(ctx); err != nil {
				logging.Default().Warn("failed to initialize cache from store, starting empty",
					"error", err.Error())
			} else {
				logging.Default().Info("cache initialized",
					"users", len(uc.Cache().Users()),
					"records", len(uc.Cache().Records()),
				)
			}

			if demoMode {
				logging.Default().Warn("Demo mode enabled: record regeneration is exposed")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
