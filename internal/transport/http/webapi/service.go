// Package webapi serves the feature catalog and operational status routes.
package webapi

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"medinsight-server-go/internal/platform/config"
	platformerrors "medinsight-server-go/internal/platform/errors"
	"medinsight-server-go/internal/platform/logging"
	"medinsight-server-go/internal/platform/system"

	"medinsight-server-go/internal/domain/prompt"
	sessionstore "medinsight-server-go/internal/domain/session/store"

	httptransport "medinsight-server-go/internal/transport/http"
)

// Service is the HTTP transport for catalog and status routes.
type Service struct {
	logger   *logging.Logger
	config   *config.Config
	sessions sessionstore.Store
	started  time.Time
}

// NewService creates the webapi transport.
func NewService(cfg *config.Config, sessions sessionstore.Store, logger *logging.Logger) (*Service, error) {
	if cfg == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "webapi.new", "config is required")
	}
	if sessions == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "webapi.new", "session store is required")
	}
	if logger == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "webapi.new", "logger is required")
	}
	return &Service{
		logger:   logger,
		config:   cfg,
		sessions: sessions,
		started:  time.Now(),
	}, nil
}

// Register wires the webapi routes into the API group.
func (s *Service) Register(_ context.Context, router *gin.RouterGroup) error {
	router.GET("/features", s.handleFeatures)
	router.GET("/system/status", s.handleSystemStatus)

	s.logger.InfoTag("HTTP", "webapi routes registered")
	return nil
}

func (s *Service) handleFeatures(c *gin.Context) {
	httptransport.RespondSuccess(c, http.StatusOK, prompt.All(), "")
}

func (s *Service) handleSystemStatus(c *gin.Context) {
	memPercent, err := system.MemoryUsage()
	if err != nil {
		s.logger.WarnTag("HTTP", "read memory usage: %v", err)
	}
	cpuPercent, err := system.CPUUsage()
	if err != nil {
		s.logger.WarnTag("HTTP", "read cpu usage: %v", err)
	}

	storeStats, err := s.sessions.Stats(c.Request.Context())
	if err != nil {
		s.logger.WarnTag("HTTP", "read store stats: %v", err)
		storeStats = map[string]any{}
	}

	status := gin.H{
		"uptime_seconds": int(time.Since(s.started).Seconds()),
		"go_version":     runtime.Version(),
		"goroutines":     runtime.NumGoroutine(),
		"memory_percent": memPercent,
		"cpu_percent":    cpuPercent,
		"sessions":       storeStats,
		"vision_model":   s.config.Vision[s.config.Selected.Vision].ModelName,
	}
	httptransport.RespondSuccess(c, http.StatusOK, status, "")
}
