package cmd

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/isometry/traffic-dash/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func cmdService() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "service",
		Aliases: []string{"s", "serve", "standalone", "server"},
		Short:   "Serve the data relay and the static assets over HTTP",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			logger.Info("Spawning...")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := setup(ctx, logger)
			if err != nil {
				return err
			}

			logger.Debug("Creating HTTP server...")
			s := &http.Server{
				Handler:           rt,
				Addr:              net.JoinHostPort(config.Service.Addr, config.Service.Port),
				ReadHeaderTimeout: config.Service.Timeout,
				WriteTimeout:      config.Service.Timeout,
				ReadTimeout:       config.Service.Timeout,
				IdleTimeout:       config.Service.Timeout,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("Serving...",
					"address", s.Addr,
					"data", rt.DataPath(),
					"static", rt.StaticPrefix(),
					"timeout", config.Service.Timeout.String())
				if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return errors.Wrap(err, "server failed")
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("Shutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Service.ShutdownTimeout)
				defer cancel()
				return s.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}

	bindEnvMap(cmd, svcEnvMapString)
	bindEnvMap(cmd, svcEnvMapDuration)
	return cmd
}
