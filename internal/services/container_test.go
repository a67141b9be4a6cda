package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"argus-dashboard-go/internal/config"
	"argus-dashboard-go/internal/models"
)

func newTestContainer(t *testing.T) *ServiceContainer {
	t.Helper()
	cfg := &config.Config{
		DashboardID:         "dashboard-test",
		BackendURL:          "http://localhost:1",
		BackendWSURL:        "ws://localhost:1/ws/tracking",
		DisplayWidth:        960,
		DisplayHeight:       540,
		DefaultCameraWidth:  1920,
		DefaultCameraHeight: 1080,
		TrajectoryMaxPoints: 10,
		HealthCheckInterval: time.Hour,
		HealthCheckTimeout:  time.Second,
		ControlSubject:      "tracking.control",
	}
	container, err := NewServiceContainer(cfg)
	require.NoError(t, err)
	return container
}

func TestControlCommandClearsTrajectories(t *testing.T) {
	container := newTestContainer(t)

	trajectories := container.Processor.Trajectories()
	trajectories.RecordPoint("p1", models.Point2D{X: 1, Y: 2}, "c01", 0.9, time.Now())
	require.Equal(t, 1, trajectories.Count())

	container.handleControlMessage([]byte(`{"command": "clear_trajectories"}`))
	assert.Zero(t, trajectories.Count())
}

func TestControlCommandDisconnects(t *testing.T) {
	container := newTestContainer(t)

	container.handleControlMessage([]byte(`{"command": "disconnect"}`))
	assert.Equal(t, models.StateDisconnected, container.ConnectionSvc.State())
}

func TestControlMessageUnrecognizedIsIgnored(t *testing.T) {
	container := newTestContainer(t)

	trajectories := container.Processor.Trajectories()
	trajectories.RecordPoint("p1", models.Point2D{X: 1, Y: 2}, "c01", 0.9, time.Now())

	container.handleControlMessage([]byte(`{"command": "reboot"}`))
	container.handleControlMessage([]byte(`not json`))
	assert.Equal(t, 1, trajectories.Count())
}
