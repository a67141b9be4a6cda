package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"argus-dashboard-go/internal/api/handlers"
	"argus-dashboard-go/internal/config"
	"argus-dashboard-go/internal/services"
)

// Server is the session-control and diagnostics surface the UI layer
// talks to.
type Server struct {
	config *config.Config
	router *gin.Engine
	server *http.Server

	healthHandler     *handlers.HealthHandler
	sessionHandler    *handlers.SessionHandler
	trajectoryHandler *handlers.TrajectoryHandler
	systemHandler     *handlers.SystemHandler
}

// NewServer wires the API server over the service container.
func NewServer(cfg *config.Config, container *services.ServiceContainer) (*Server, error) {
	if container == nil {
		return nil, fmt.Errorf("service container is required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		config:            cfg,
		router:            router,
		healthHandler:     handlers.NewHealthHandler(cfg.DashboardID, cfg.Version, container.HealthProbe),
		sessionHandler:    handlers.NewSessionHandler(container.ConnectionSvc),
		trajectoryHandler: handlers.NewTrajectoryHandler(container),
		systemHandler:     handlers.NewSystemHandler(cfg.DashboardID, container.ConnectionSvc),
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupSwagger()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
	}

	return s, nil
}

func (s *Server) Start() error {
	log.Info().Int("port", s.config.Port).Msg("Starting dashboard API")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
