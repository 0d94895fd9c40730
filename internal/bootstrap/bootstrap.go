// Package bootstrap owns the service lifecycle: configuration loading,
// dependency initialisation in declared order, HTTP startup and graceful
// shutdown.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	platformconfig "medinsight-server-go/internal/platform/config"
	platformerrors "medinsight-server-go/internal/platform/errors"
	platformlogging "medinsight-server-go/internal/platform/logging"
	platformobservability "medinsight-server-go/internal/platform/observability"

	"medinsight-server-go/internal/core/providers/vision"
	"medinsight-server-go/internal/domain/eventbus"
	domainimage "medinsight-server-go/internal/domain/image"
	"medinsight-server-go/internal/domain/report"
	"medinsight-server-go/internal/domain/report/export"
	sessionstore "medinsight-server-go/internal/domain/session/store"
	httptransport "medinsight-server-go/internal/transport/http"
	httpanalysis "medinsight-server-go/internal/transport/http/analysis"
	httpwebapi "medinsight-server-go/internal/transport/http/webapi"
)

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	config                *platformconfig.Config
	configPath            string
	logger                *platformlogging.Logger
	observabilityShutdown platformobservability.ShutdownFunc
	sessions              sessionstore.Store
	visionProvider        *vision.Provider
	reports               *report.Service
	exporter              *export.Exporter
}

// Run starts the whole service lifecycle: it loads configuration,
// initialises dependencies and shuts down gracefully on SIGINT/SIGTERM.
func Run(ctx context.Context) error {
	state := &appState{}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}

	logBootstrapGraph(steps, logger)

	if shutdown := state.observabilityShutdown; shutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.WarnTag("BOOT", "observability shutdown: %v", err)
			}
		}()
	}

	defer func() {
		if state.sessions != nil {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := state.sessions.Close(closeCtx); err != nil {
				logger.ErrorTag("STORE", "session store close: %v", err)
			}
		}
		if state.visionProvider != nil {
			if err := state.visionProvider.Cleanup(); err != nil {
				logger.ErrorTag("VISION", "provider cleanup: %v", err)
			}
		}
	}()

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	if err := waitForShutdown(signalCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.InfoTag("BOOT", "service stopped cleanly")
	logger.Close()
	return nil
}

func logBootstrapGraph(steps []initStep, logger *platformlogging.Logger) {
	logger.InfoTag("BOOT", "initialisation graph")
	for _, step := range steps {
		logger.InfoTag("BOOT", "  %s: %s", step.ID, step.Title)
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

// InitGraph declares the dependency-ordered initialisation steps.
func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "observability:setup-hooks",
			Title:     "Setup observability hooks",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   setupObservabilityStep,
		},
		{
			ID:        "session:init-store",
			Title:     "Initialise session store",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindStorage,
			Execute:   initSessionStoreStep,
		},
		{
			ID:        "vision:init-provider",
			Title:     "Initialise vision provider",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindInference,
			Execute:   initVisionStep,
		},
		{
			ID:        "report:init-service",
			Title:     "Initialise report service",
			DependsOn: []string{"session:init-store", "vision:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initReportServiceStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().WithDotEnv(true).Load()
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindConfig, "config:load", "failed to load configuration", err)
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init-provider",
			"config not loaded",
		)
	}

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init-provider", "failed to initialise logging", err)
	}
	state.logger = logger

	source := state.configPath
	if source == "" {
		source = "defaults"
	}
	logger.InfoTag("BOOT", "logging ready [%s] config=%s", state.config.Log.Level, source)
	return nil
}

func setupObservabilityStep(ctx context.Context, state *appState) error {
	if state.logger == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"observability:setup-hooks",
			"config/logger not initialised",
		)
	}

	cfg := platformobservability.Config{
		Enabled: strings.EqualFold(state.config.Log.Level, "debug"),
	}
	shutdown, err := platformobservability.Setup(ctx, cfg, state.logger.Slog())
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "observability:setup-hooks", "failed to setup observability", err)
	}
	state.observabilityShutdown = shutdown
	return nil
}

func initSessionStoreStep(_ context.Context, state *appState) error {
	if state.config == nil || state.logger == nil {
		return platformerrors.New(
			platformerrors.KindStorage,
			"session:init-store",
			"missing config/logger",
		)
	}

	storeCfg := state.config.Session.Store
	cfg := sessionstore.Config{
		Driver: strings.ToLower(strings.TrimSpace(storeCfg.Type)),
		TTL:    storeCfg.TTL,
	}
	switch cfg.Driver {
	case sessionstore.DriverRedis:
		cfg.Redis = &sessionstore.RedisConfig{
			Addr:     storeCfg.Redis.Addr,
			Username: storeCfg.Redis.Username,
			Password: storeCfg.Redis.Password,
			DB:       storeCfg.Redis.DB,
			Prefix:   storeCfg.Redis.Prefix,
		}
	default:
		if storeCfg.Memory.Cleanup > 0 {
			cfg.Memory = &sessionstore.MemoryConfig{GCInterval: storeCfg.Memory.Cleanup}
		}
	}

	sessions, err := sessionstore.New(cfg)
	if err != nil {
		return err
	}
	state.sessions = sessions
	state.logger.InfoTag("STORE", "session store ready (driver=%s ttl=%s)", cfg.Driver, storeCfg.TTL)
	return nil
}

func initVisionStep(_ context.Context, state *appState) error {
	if state.config == nil || state.logger == nil {
		return platformerrors.New(
			platformerrors.KindInference,
			"vision:init-provider",
			"missing config/logger",
		)
	}

	selected := state.config.Selected.Vision
	visionCfg, ok := state.config.Vision[selected]
	if !ok {
		return platformerrors.New(
			platformerrors.KindInference,
			"vision:init-provider",
			"selected vision provider not configured: "+selected,
		)
	}

	provider, err := vision.NewProvider(&visionCfg, state.logger)
	if err != nil {
		return err
	}
	if err := provider.Initialize(); err != nil {
		return err
	}
	state.visionProvider = provider
	state.logger.InfoTag("VISION", "provider ready (%s, model=%s)", visionCfg.Type, visionCfg.ModelName)
	return nil
}

func initReportServiceStep(_ context.Context, state *appState) error {
	if state.sessions == nil || state.visionProvider == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"report:init-service",
			"session store or vision provider not initialised",
		)
	}

	selected := state.config.Vision[state.config.Selected.Vision]
	pipeline, err := domainimage.NewPipeline(domainimage.Options{
		Security: &selected.Security,
		Logger:   state.logger,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "report:init-service", "failed to create image pipeline", err)
	}

	state.reports = report.NewService(pipeline, state.visionProvider, state.sessions, eventbus.New(), state.logger)
	state.exporter = export.NewExporter(state.config.Export, state.logger)
	return nil
}

func startHTTPServer(state *appState, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	config := state.config
	logger := state.logger

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	router := httpRouter.Engine
	apiGroup := httpRouter.API

	router.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api") {
			c.JSON(http.StatusNotFound, httptransport.APIResponse{
				Success: false,
				Data:    gin.H{},
				Message: "api not found",
				Code:    http.StatusNotFound,
			})
			return
		}
		c.File(config.Web.StaticDir + "/index.html")
	})

	analysisService, err := httpanalysis.NewService(state.reports, state.exporter, logger)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "analysis:new-service", "failed to create analysis service", err)
	}
	webapiService, err := httpwebapi.NewService(config, state.sessions, logger)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "webapi:new-service", "failed to create webapi service", err)
	}

	analysisService.Register(groupCtx, apiGroup)
	webapiService.Register(groupCtx, apiGroup)

	httpServer := &http.Server{
		Addr:    config.Server.IP + ":" + strconv.Itoa(config.Server.Port),
		Handler: router,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "server listening on http://localhost:%d", config.Server.Port)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "server shutdown: %v", err)
			} else {
				logger.InfoTag("HTTP", "server shut down gracefully")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "server failed: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("BOOT", "shutdown signal received (%v), cleaning up", context.Cause(ctx))

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("BOOT", "error during shutdown: %v", err)
			return err
		}
		logger.InfoTag("BOOT", "all services stopped")
	case <-time.After(15 * time.Second):
		logger.ErrorTag("BOOT", "shutdown timed out, forcing exit")
		return errors.New("shutdown timed out")
	}
	return nil
}
