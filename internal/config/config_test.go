package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"argus-dashboard-go/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "dashboard-1", cfg.DashboardID)
	assert.Equal(t, 8600, cfg.Port)
	assert.Equal(t, "ws://localhost:8500/ws/tracking", cfg.BackendWSURL)
	assert.Equal(t, 3*time.Second, cfg.ReconnectDelay)
	assert.Equal(t, models.Size{Width: 960, Height: 540}, cfg.DisplaySize())
	assert.Equal(t, models.Size{Width: 1920, Height: 1080}, cfg.DefaultCameraSize())
	assert.True(t, cfg.MaintainAspectRatio)
	assert.Equal(t, 100, cfg.TrajectoryMaxPoints)
	assert.False(t, cfg.NatsEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DASHBOARD_ID", "ops-floor-2")
	t.Setenv("RECONNECT_DELAY", "500ms")
	t.Setenv("CONFIDENCE_THRESHOLD", "0.35")
	t.Setenv("MAINTAIN_ASPECT_RATIO", "false")

	cfg := Load()
	assert.Equal(t, "ops-floor-2", cfg.DashboardID)
	assert.Equal(t, 500*time.Millisecond, cfg.ReconnectDelay)
	assert.Equal(t, 0.35, cfg.ConfidenceThreshold)
	assert.False(t, cfg.MaintainAspectRatio)
}

func TestParseCameraResolutions(t *testing.T) {
	res := parseCameraResolutions("c09=1920x1080, c10=1280x720")
	require.Len(t, res, 2)
	assert.Equal(t, models.Size{Width: 1920, Height: 1080}, res["c09"])
	assert.Equal(t, models.Size{Width: 1280, Height: 720}, res["c10"])
}

func TestParseCameraResolutionsSkipsMalformed(t *testing.T) {
	res := parseCameraResolutions("c09=1920x1080,bogus,c10=0x720,c11=axb,,c12=640x480")
	require.Len(t, res, 2)
	assert.Contains(t, res, "c09")
	assert.Contains(t, res, "c12")
}

func TestParseCameraResolutionsEmpty(t *testing.T) {
	assert.Empty(t, parseCameraResolutions(""))
}
