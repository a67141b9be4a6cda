package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"argus-dashboard-go/internal/config"
)

func NewServiceLogger(cfg *config.Config, service string) zerolog.Logger {
	return log.With().Str("dashboard_id", cfg.DashboardID).Str("service", service).Logger()
}

// WithSession scopes a logger to one streaming session.
func WithSession(base zerolog.Logger, sessionID string) zerolog.Logger {
	return base.With().Str("session_id", sessionID).Logger()
}
