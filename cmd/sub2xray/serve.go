package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/creamcroissant/sub2xray/internal/bootstrap"
	"github.com/creamcroissant/sub2xray/internal/job"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve decoded servers and client configs over HTTP",
	Long: `serve refreshes the subscription on a cron schedule and exposes the
current snapshot, per-server Xray configs and Prometheus metrics over HTTP.`,
	RunE: runServe,
}

func init() {
	flags := serveCmd.Flags()
	flags.String("addr", "", "HTTP listen address (default: 127.0.0.1:8080)")
	flags.String("refresh", "", "Cron spec for subscription refresh (default: @every 1h)")
	flags.StringP("subscribe", "s", "", "URL to subscribe")
	flags.StringP("outdir", "o", "", "Directory for server{NN}.json and subscribe.data")
	flags.Uint64("retries", 0, "Retry attempts for each subscription fetch")
	flags.Duration("timeout", 0, "Connect and response-header timeout for the fetch")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp()
	if err != nil {
		return err
	}
	cfg := app.Config

	scheduler := job.NewScheduler(logger, job.DefaultJobTimeout)
	refreshJob := job.NewSubscriptionRefreshJob(app.Catalog, logger)
	if _, err := scheduler.Register(cfg.Serve.RefreshSpec, refreshJob); err != nil {
		return err
	}
	// 首次刷新失败时仍可从磁盘记录提供服务
	if err := scheduler.RunNow(ctx, refreshJob); err != nil {
		logger.Warn("initial refresh failed, serving saved records", "error", err)
	}
	scheduler.Start()

	server := bootstrap.NewHTTPServer(cfg.Serve.Addr, app.Handler())
	go func() {
		logger.Info("http server starting", "addr", cfg.Serve.Addr, "refresh", cfg.Serve.RefreshSpec)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Serve.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down http server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server exited cleanly")
	return nil
}
