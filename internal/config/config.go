package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"argus-dashboard-go/internal/models"
)

type Config struct {
	// Application
	Version     string
	Environment string
	DashboardID string
	Port        int
	LogLevel    string

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// Tracking backend (the external AI process producing the stream)
	BackendURL   string // REST base, e.g. http://localhost:8500
	BackendWSURL string // streaming channel, e.g. ws://localhost:8500/ws/tracking

	// Streaming session
	ReconnectDelay   time.Duration // fixed delay before the single reconnect attempt
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration // max silence on the streaming channel

	// Health probe (independent of the streaming channel)
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration // a hung probe must not block the next one

	// Display and geometry
	DisplayWidth        int
	DisplayHeight       int
	MaintainAspectRatio bool
	DefaultCameraWidth  int
	DefaultCameraHeight int
	// CameraResolutions holds per-camera native resolutions parsed from
	// CAMERA_RESOLUTIONS, e.g. "cam1=1920x1080,cam2=1280x720".
	CameraResolutions map[string]models.Size

	// Pipeline
	ConfidenceThreshold float64
	TrajectoryMaxPoints int

	// NATS frame summary publishing
	NatsEnabled        bool
	NatsURL            string
	NatsConnectTimeout time.Duration
	NatsReconnectWait  time.Duration
	NatsMaxReconnects  int
	FramesSubject      string
	ControlSubject     string

	// Swagger Configuration
	SwaggerHost string
	SwaggerPort int

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found or error loading .env file, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	return &Config{
		// Application
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		DashboardID: getEnv("DASHBOARD_ID", "dashboard-1"),
		Port:        getEnvInt("PORT", 8600),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Logdy (lightweight web log viewer)
		LogdyEnabled: getEnvBool("LOGDY_ENABLED", false),
		LogdyHost:    getEnv("LOGDY_HOST", "localhost"),
		LogdyPort:    getEnvInt("LOGDY_PORT", 8080),

		// Tracking backend
		BackendURL:   getEnv("BACKEND_URL", "http://localhost:8500"),
		BackendWSURL: getEnv("BACKEND_WS_URL", "ws://localhost:8500/ws/tracking"),

		// Streaming session
		ReconnectDelay:   getEnvDuration("RECONNECT_DELAY", 3*time.Second),
		HandshakeTimeout: getEnvDuration("HANDSHAKE_TIMEOUT", 10*time.Second),
		ReadTimeout:      getEnvDuration("READ_TIMEOUT", 60*time.Second),

		// Health probe
		HealthCheckInterval: getEnvDuration("HEALTH_CHECK_INTERVAL", 10*time.Second),
		HealthCheckTimeout:  getEnvDuration("HEALTH_CHECK_TIMEOUT", 5*time.Second),

		// Display and geometry
		DisplayWidth:        getEnvInt("DISPLAY_WIDTH", 960),
		DisplayHeight:       getEnvInt("DISPLAY_HEIGHT", 540),
		MaintainAspectRatio: getEnvBool("MAINTAIN_ASPECT_RATIO", true),
		DefaultCameraWidth:  getEnvInt("DEFAULT_CAMERA_WIDTH", 1920),
		DefaultCameraHeight: getEnvInt("DEFAULT_CAMERA_HEIGHT", 1080),
		CameraResolutions:   parseCameraResolutions(getEnv("CAMERA_RESOLUTIONS", "")),

		// Pipeline
		ConfidenceThreshold: getEnvFloat("CONFIDENCE_THRESHOLD", 0.0),
		TrajectoryMaxPoints: getEnvInt("TRAJECTORY_MAX_POINTS", 100),

		// NATS frame summary publishing
		NatsEnabled:        getEnvBool("NATS_ENABLED", false),
		NatsURL:            getNatsURL(),
		NatsConnectTimeout: getEnvDuration("NATS_CONNECT_TIMEOUT", 10*time.Second),
		NatsReconnectWait:  getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		NatsMaxReconnects:  getEnvInt("NATS_MAX_RECONNECTS", -1), // -1 = unlimited
		FramesSubject:      getEnv("FRAMES_SUBJECT", "tracking.frames"),
		ControlSubject:     getEnv("CONTROL_SUBJECT", "tracking.control"),

		// Swagger Configuration
		SwaggerHost: getEnv("SWAGGER_HOST", "localhost"),
		SwaggerPort: getEnvInt("SWAGGER_PORT", 8600),

		// Graceful Shutdown
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

// DisplaySize returns the configured on-screen target resolution.
func (c *Config) DisplaySize() models.Size {
	return models.Size{Width: float64(c.DisplayWidth), Height: float64(c.DisplayHeight)}
}

// DefaultCameraSize returns the fallback native resolution for cameras
// without a CAMERA_RESOLUTIONS entry.
func (c *Config) DefaultCameraSize() models.Size {
	return models.Size{Width: float64(c.DefaultCameraWidth), Height: float64(c.DefaultCameraHeight)}
}

// parseCameraResolutions parses "cam1=1920x1080,cam2=1280x720". Malformed
// entries are logged and skipped.
func parseCameraResolutions(raw string) map[string]models.Size {
	out := make(map[string]models.Size)
	if raw == "" {
		return out
	}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, dims, ok := strings.Cut(entry, "=")
		if !ok {
			log.Warn().Str("entry", entry).Msg("Skipping malformed camera resolution entry")
			continue
		}
		w, h, ok := strings.Cut(dims, "x")
		if !ok {
			log.Warn().Str("entry", entry).Msg("Skipping malformed camera resolution entry")
			continue
		}
		width, errW := strconv.Atoi(strings.TrimSpace(w))
		height, errH := strconv.Atoi(strings.TrimSpace(h))
		if errW != nil || errH != nil || width <= 0 || height <= 0 {
			log.Warn().Str("entry", entry).Msg("Skipping camera resolution with non-positive dimensions")
			continue
		}
		out[strings.TrimSpace(name)] = models.Size{Width: float64(width), Height: float64(height)}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Helper functions for Docker environment detection
func isRunningInDocker() bool {
	if os.Getenv("DOCKER_CONTAINER") == "true" {
		return true
	}

	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	return false
}

// getNatsURL returns the appropriate NATS URL based on environment
func getNatsURL() string {
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		return envURL
	}

	// If running in Docker, use service name; otherwise use localhost
	if isRunningInDocker() {
		return "nats://nats:4222"
	}

	return "nats://localhost:4222"
}
