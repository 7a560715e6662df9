package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "busmanager/internal/config"
	router "busmanager/internal/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			env.AppAddr = addr
		}

		if _, err := openStore(cmd.Context()); err != nil {
			return err
		}
		defer intconfig.CloseDB()

		srv := &http.Server{
			Addr:              env.AppAddr,
			Handler:           router.NewRouter(env),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       20 * time.Second,
			WriteTimeout:      20 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("server listening", zap.String("addr", env.AppAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case err := <-errCh:
			return err
		case <-quit:
		}

		zap.L().Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
		zap.L().Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides APP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
