package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/clock"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/driver"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/metrics"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/service"
	"github.com/liyanaidrs/CPC357-Assign2/internal/config"
	"github.com/liyanaidrs/CPC357-Assign2/internal/events"
	"github.com/liyanaidrs/CPC357-Assign2/internal/grpcapi"
	"github.com/liyanaidrs/CPC357-Assign2/internal/httpapi"
	"github.com/liyanaidrs/CPC357-Assign2/internal/platform/otel"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Subscribe to scans and serve the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, logger)
	},
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	shutdownTracing, err := otel.Setup(ctx, "attendance-server", cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("tracing shutdown error", "err", err)
		}
	}()

	policy, err := service.ParseStatePolicy(cfg.Pipeline.UnknownStatePolicy)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}
	}()
	logger.Info("store opened", "driver", cfg.DB.Driver)

	m := metrics.New(prometheus.DefaultRegisterer)
	health := service.NewHealth()
	clk := clock.New()

	drv := driver.New(driver.Config{
		URL:           cfg.NATS.URL,
		Subject:       cfg.NATS.ScanSubject,
		Queue:         cfg.NATS.Queue,
		Workers:       cfg.Pipeline.Workers,
		ReconnectWait: cfg.NATS.ReconnectWait,
	}, logger.With("component", "driver"), m)
	drv.OnStateChange(func(s driver.State) {
		health.SetSubscribed(s == driver.Subscribed)
	})

	validator := service.NewScanValidator(service.ValidatorDeps{
		Identities: st,
		Events:     st,
		Feedback:   events.NewFeedbackPublisher(drv.Publisher(), cfg.NATS.FeedbackSubject),
		Clock:      clk,
		Logger:     logger.With("component", "validator"),
		Metrics:    m,
	}, service.ValidatorConfig{
		StoreTimeout: cfg.Pipeline.StoreTimeout,
		Policy:       policy,
	})

	httpSrv := httpapi.NewServer(httpapi.Dependencies{
		Logger: logger.With("component", "http"),
		Addr:   cfg.HTTP.Addr,
		Events: st,
		Clock:  clk,
		Health: health,
	})

	var (
		grpcSrv *grpcapi.Server
		grpcLis net.Listener
	)
	if cfg.GRPC.Addr != "" {
		grpcLis, err = net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		grpcSrv = grpcapi.NewServer(logger.With("component", "grpc"))
		health.OnChange(grpcSrv.SetReady)
	}

	probe := service.NewStoreProbe(st, health, m, service.ProbeConfig{
		Interval: cfg.Pipeline.ProbeInterval,
		Timeout:  cfg.Pipeline.StoreTimeout,
	}, logger.With("component", "probe"))
	probe.Start(ctx)
	defer probe.Stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return drv.Run(gctx, validator)
	})

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", cfg.HTTP.Addr)
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})

	if grpcSrv != nil {
		g.Go(func() error {
			if err := grpcSrv.Serve(grpcLis); err != nil {
				return fmt.Errorf("grpc: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if grpcSrv != nil {
			grpcSrv.Stop(shutdownCtx)
		}
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		return nil
	})

	logger.Info("attendance server started",
		"scan_subject", cfg.NATS.ScanSubject,
		"feedback_subject", cfg.NATS.FeedbackSubject,
		"workers", cfg.Pipeline.Workers,
		"policy", policy,
	)

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
