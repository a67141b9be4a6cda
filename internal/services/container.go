package services

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"argus-dashboard-go/internal/config"
	"argus-dashboard-go/internal/logging"
	"argus-dashboard-go/internal/pipeline"
	"argus-dashboard-go/internal/services/connection"
	"argus-dashboard-go/internal/services/messaging"
)

// ServiceContainer holds all services
type ServiceContainer struct {
	Config        *config.Config
	Processor     *pipeline.Processor
	HealthProbe   *connection.HealthProbe
	ConnectionSvc *connection.Service
	MessagingSvc  *messaging.Service
}

// NewServiceContainer creates a new service container
func NewServiceContainer(cfg *config.Config) (*ServiceContainer, error) {
	colors := pipeline.NewColorRegistry(nil)
	trajectories := pipeline.NewTrajectoryProcessor(cfg.TrajectoryMaxPoints, colors)

	processor := pipeline.NewProcessor(pipeline.ProcessorConfig{
		DisplaySize:         cfg.DisplaySize(),
		CameraResolutions:   cfg.CameraResolutions,
		DefaultResolution:   cfg.DefaultCameraSize(),
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		MaintainAspectRatio: cfg.MaintainAspectRatio,
	}, colors, trajectories, logging.NewServiceLogger(cfg, "pipeline"))

	// Frame summary publishing is optional; the pipeline runs fine without
	// a broker.
	var messagingSvc *messaging.Service
	var publisher connection.FramePublisher
	if cfg.NatsEnabled {
		svc, err := messaging.NewService(cfg)
		if err != nil {
			return nil, err
		}
		messagingSvc = svc
		publisher = svc
	}

	health := connection.NewHealthProbe(
		cfg.BackendURL,
		cfg.HealthCheckInterval,
		cfg.HealthCheckTimeout,
		logging.NewServiceLogger(cfg, "health"),
	)

	connectionSvc := connection.NewService(cfg, processor, publisher, health,
		logging.NewServiceLogger(cfg, "connection"))

	return &ServiceContainer{
		Config:        cfg,
		Processor:     processor,
		HealthProbe:   health,
		ConnectionSvc: connectionSvc,
		MessagingSvc:  messagingSvc,
	}, nil
}

// Start launches the background services. The health probe runs regardless
// of streaming-channel state; the control subscription only exists when a
// broker is configured.
func (sc *ServiceContainer) Start(ctx context.Context) {
	sc.HealthProbe.Start(ctx)

	if sc.MessagingSvc != nil {
		subject := sc.Config.ControlSubject
		if _, err := sc.MessagingSvc.Subscribe(subject, sc.handleControlMessage); err != nil {
			log.Warn().Err(err).Str("subject", subject).Msg("Failed to subscribe to control subject")
		} else {
			log.Info().Str("subject", subject).Msg("Listening for control commands")
		}
	}
}

type controlCommand struct {
	Command string `json:"command"`
}

// handleControlMessage dispatches remote control commands arriving on the
// control subject: the same operations the REST surface exposes, for
// broker-side operators.
func (sc *ServiceContainer) handleControlMessage(data []byte) {
	var cmd controlCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		log.Warn().Err(err).Msg("Dropping unparseable control message")
		return
	}
	switch cmd.Command {
	case "clear_trajectories":
		sc.ClearAllTrajectories()
		log.Info().Msg("Trajectories cleared by control command")
	case "disconnect":
		sc.ConnectionSvc.Disconnect()
		log.Info().Msg("Session closed by control command")
	default:
		log.Warn().Str("command", cmd.Command).Msg("Ignoring unrecognized control command")
	}
}

// ClearAllTrajectories drops all trajectory and color state, used when
// switching environments/scenes.
func (sc *ServiceContainer) ClearAllTrajectories() {
	sc.Processor.Trajectories().ClearAll()
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	if sc.ConnectionSvc != nil {
		sc.ConnectionSvc.Stop()
	}

	if sc.HealthProbe != nil {
		sc.HealthProbe.Stop()
	}

	if sc.MessagingSvc != nil {
		if err := sc.MessagingSvc.Shutdown(ctx); err != nil {
			return err
		}
	}

	return nil
}
