package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-dashboard-prefs/components/dashboard"
	"github.com/goliatone/go-dashboard-prefs/components/dashboard/gorouter"
	"github.com/goliatone/go-dashboard-prefs/components/dashboard/httpapi"
	"github.com/goliatone/go-dashboard-prefs/components/dashboard/metrics"
	"github.com/goliatone/go-dashboard-prefs/components/dashboard/storage"
	"github.com/goliatone/go-dashboard-prefs/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("boardd: load configuration")
	}
	logger := cfg.Logger(os.Stderr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("boardd: exited")
	}
}

func run(ctx context.Context, cfg *config.Configuration, logger *logrus.Logger) error {
	backend, closer, err := storage.Open(ctx, cfg.Storage.Backend())
	if err != nil {
		return err
	}
	defer closer.Close()

	registry, err := dashboard.BootstrapRegistry(cfg.ManifestPath)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promTelemetry := metrics.New(reg)
	telemetry := dashboard.MultiTelemetry(promTelemetry, dashboard.NewLogTelemetry(logger))

	hook := dashboard.NewBroadcastHook().WithUserResolver(func(r *http.Request) string {
		return httpapi.ViewerFromRequest(r).UserID
	})
	store := dashboard.NewStore(dashboard.StoreOptions{
		AppID:     cfg.AppID,
		Backend:   backend,
		Telemetry: telemetry,
	})
	service := dashboard.NewService(dashboard.Options{
		Store:       store,
		Registry:    registry,
		RefreshHook: hook,
		Telemetry:   telemetry,
		Logger:      logger.WithField("component", "dashboard"),
	})

	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return err
	}
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:  service,
		Renderer: renderer,
	})

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		API:        httpapi.NewCommandExecutor(service, telemetry),
		Broadcast:  hook,
		BasePath:   cfg.HTTP.BasePath,
	}); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.HTTP.MetricsPath, promTelemetry.Handler())
	metricsServer := &http.Server{Addr: cfg.HTTP.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errs := make(chan error, 2)
	go func() {
		logger.WithField("addr", cfg.HTTP.MetricsAddr).Info("boardd: metrics listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":    cfg.HTTP.Addr,
			"base":    cfg.HTTP.BasePath,
			"storage": cfg.Storage.Driver,
		}).Info("boardd: dashboard listening")
		errs <- server.Serve(cfg.HTTP.Addr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("boardd: shutting down")
	case err := <-errs:
		if err != nil {
			return err
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("boardd: metrics shutdown")
	}
	return server.Shutdown(shutdownCtx)
}
