package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	httpserver "bcchrates/internal/platform/http"

	"bcchrates/internal/adapters/cache"
	"bcchrates/internal/adapters/httpclient"
	"bcchrates/internal/api"
	"bcchrates/internal/config"
	"bcchrates/internal/metrics"
	"bcchrates/internal/rate"
	"bcchrates/internal/rate/handler"

	"github.com/sirupsen/logrus"
)

// Run wires the application components, starts HTTP server and scheduler
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}
	// Logger
	logrus.SetOutput(os.Stdout)
	cfgLevel := appCfg.Logging.Level
	if parsedLvl, parseErr := logrus.ParseLevel(cfgLevel); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")

	if len(appCfg.Rates.Series) == 0 {
		err = errors.New("no currency series configured")
		logrus.WithError(err).Error("Failed to load supported currencies")
		return err
	}
	codes := supportedCodes(appCfg.Rates.Series)
	logrus.Infof("✅ Supported currencies: %v", codes)

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appMetrics := metrics.NewMetrics()

	// Base HTTP client (configurable timeout)
	httpTimeout := time.Duration(appCfg.BCCh.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	baseHTTPClient := &http.Client{Timeout: httpTimeout}

	// BCCh client behind the observation cache
	bcchClient := httpclient.NewBCChClient(
		baseHTTPClient,
		appCfg.BCCh.BaseURL,
		appCfg.BCCh.User,
		appCfg.BCCh.Pass,
		appCfg.Rates.Series,
	)
	obsCache, err := cache.NewObservationCache(appCfg.Rates.ObsCacheMaxItems)
	if err != nil {
		logrus.WithError(err).Error("Failed to create observation cache")
		return err
	}
	defer obsCache.Close()
	provider := cache.NewCachingProvider(bcchClient, obsCache)

	// Core: fallback resolver, rate cache, read service
	resolver := rate.NewFallbackResolver(provider, appCfg.Rates.FallbackDays, appMetrics)
	staleness := time.Duration(appCfg.Rates.StalenessSeconds) * time.Second
	rateCache := rate.NewCache(resolver, codes, staleness, appMetrics)
	rateService := rate.NewService(rateCache)
	rateValidator := rate.NewValidator(toSet(codes))

	// Scheduler: immediate first refresh, then fixed interval
	scheduler := rate.NewScheduler(rateCache, time.Duration(appCfg.Rates.RefreshSeconds)*time.Second)
	// Ensure scheduler stops before the process exits
	defer func() {
		if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()
	if startErr := scheduler.Start(ctx); startErr != nil {
		logrus.WithError(startErr).Error("Failed to start scheduler")
		return startErr
	}
	logrus.Info("✅ Scheduler activation successful")

	// Handlers and router
	rateHandler := handler.NewRateHandler(rateValidator, rateService)
	router := api.NewRouter(rateHandler, appMetrics)

	logrus.Info("Starting http server")
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		// Cancel the root context to stop scheduler and other in-flight work
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}

func supportedCodes(series map[string]string) []string {
	codes := make([]string, 0, len(series))
	for code := range series {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

func toSet(codes []string) map[string]struct{} {
	m := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		m[c] = struct{}{}
	}
	return m
}
