package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gymlog/internal/handlers"
	"gymlog/internal/middleware"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 90 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 5 * time.Second
)

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.port, "port", "", "HTTP port (overrides PORT)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *options) error {
	logger := opts.logger
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	guard := middleware.NewUserKeyGuard(a.cfg.UserKeySecret)
	if guard.Enabled() {
		logger.Info("signed user keys required")
	}

	srv := &http.Server{
		Addr: ":" + a.cfg.Port,
		Handler: handlers.NewRouter(handlers.Deps{
			Store:          a.store,
			Analyzer:       a.analyzer,
			MealLogger:     a.meals,
			Parser:         a.parser,
			Tipper:         a.tipper,
			Guard:          guard,
			AllowedOrigins: a.cfg.AllowedOrigins,
			Logger:         logger,
		}),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	logger.Info("shutdown initiated")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
