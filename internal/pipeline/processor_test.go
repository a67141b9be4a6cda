package pipeline

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"argus-dashboard-go/internal/models"
)

func newTestProcessor(threshold float64) *Processor {
	colors := NewColorRegistry(nil)
	return NewProcessor(ProcessorConfig{
		DisplaySize:         models.Size{Width: 960, Height: 540},
		CameraResolutions:   map[string]models.Size{"c09": {Width: 1920, Height: 1080}},
		DefaultResolution:   models.Size{Width: 1920, Height: 1080},
		ConfidenceThreshold: threshold,
		MaintainAspectRatio: true,
	}, colors, NewTrajectoryProcessor(50, colors), zerolog.Nop())
}

func confidence(v float64) *float64 { return &v }

func examplePayload() *models.TrackingPayload {
	return &models.TrackingPayload{
		GlobalFrameIndex: 5,
		SceneID:          "s14",
		TimestampUTC:     "2025-01-01T00:00:00Z",
		Cameras: map[string]models.CameraTrackingData{
			"c09": {
				ImageSource: "f5.jpg",
				Tracks: []models.TrackedPerson{
					{
						TrackID:    1,
						GlobalID:   "p1",
						BBox:       models.BoundingBox{X1: 10, Y1: 10, X2: 50, Y2: 90},
						Confidence: confidence(0.9),
					},
				},
			},
		},
	}
}

func TestProcessExampleFrame(t *testing.T) {
	p := newTestProcessor(0)

	result, err := p.Process(examplePayload(), 0)
	require.NoError(t, err)

	assert.Equal(t, int64(5), result.GlobalFrameIndex)
	assert.Equal(t, 1, result.DetectionCount)
	assert.Equal(t, []string{"p1"}, result.GlobalIDs)

	cam := result.Cameras["c09"]
	require.Len(t, cam.Tracks, 1)
	track := cam.Tracks[0]

	// 1920x1080 onto an aspect-matched 960x540 display.
	assert.Equal(t, models.BoundingBox{X1: 5, Y1: 5, X2: 25, Y2: 45}, track.DisplayBBox)
	assert.Equal(t, "P-p1 (90%)", track.Label)
	assert.Equal(t, models.Point2D{X: 15, Y: 25}, track.Center)
	assert.NotEqual(t, DefaultTrackColor, track.Color)
}

func TestProcessFeedsTrajectoryFromDisplayCenter(t *testing.T) {
	p := newTestProcessor(0)

	_, err := p.Process(examplePayload(), 0)
	require.NoError(t, err)

	traj, ok := p.Trajectories().Get("p1")
	require.True(t, ok)
	require.Len(t, traj.Points, 1)
	// No map_coords on the track: display-space center is recorded.
	assert.Equal(t, models.Point2D{X: 15, Y: 25}, traj.Points[0].Position)
	assert.Equal(t, "c09", traj.Points[0].CameraID)
}

func TestProcessPrefersMapCoordsForTrajectory(t *testing.T) {
	p := newTestProcessor(0)
	payload := examplePayload()
	cam := payload.Cameras["c09"]
	cam.Tracks[0].MapCoords = &models.Point2D{X: 3.5, Y: 7.25}
	payload.Cameras["c09"] = cam

	_, err := p.Process(payload, 0)
	require.NoError(t, err)

	traj, ok := p.Trajectories().Get("p1")
	require.True(t, ok)
	assert.Equal(t, models.Point2D{X: 3.5, Y: 7.25}, traj.Points[0].Position)
}

func TestProcessFiltersLowConfidence(t *testing.T) {
	p := newTestProcessor(0.5)
	payload := examplePayload()
	cam := payload.Cameras["c09"]
	cam.Tracks = append(cam.Tracks,
		models.TrackedPerson{
			TrackID:    2,
			GlobalID:   "p2",
			BBox:       models.BoundingBox{X1: 100, Y1: 100, X2: 200, Y2: 300},
			Confidence: confidence(0.2),
		},
		models.TrackedPerson{
			// No confidence value: absence of a score is not evidence of
			// low quality, so this track is never filtered.
			TrackID: 3,
			BBox:    models.BoundingBox{X1: 300, Y1: 100, X2: 400, Y2: 300},
		},
	)
	payload.Cameras["c09"] = cam

	result, err := p.Process(payload, 0)
	require.NoError(t, err)

	require.Len(t, result.Cameras["c09"].Tracks, 2)
	assert.Equal(t, 2, result.DetectionCount)
	assert.Equal(t, []string{"p1"}, result.GlobalIDs)
}

func TestProcessAnonymousTrackGetsDefaults(t *testing.T) {
	p := newTestProcessor(0)
	payload := examplePayload()
	cam := payload.Cameras["c09"]
	cam.Tracks = []models.TrackedPerson{{
		TrackID: 7,
		BBox:    models.BoundingBox{X1: 0, Y1: 0, X2: 100, Y2: 100},
	}}
	payload.Cameras["c09"] = cam

	result, err := p.Process(payload, 0)
	require.NoError(t, err)

	track := result.Cameras["c09"].Tracks[0]
	assert.Equal(t, DefaultTrackColor, track.Color)
	assert.Equal(t, "T-7", track.Label)
	assert.Empty(t, result.GlobalIDs)
	// Tracks without a global id never populate a trajectory.
	assert.Zero(t, p.Trajectories().Count())
}

func TestProcessShortensLongGlobalIDs(t *testing.T) {
	p := newTestProcessor(0)
	payload := examplePayload()
	cam := payload.Cameras["c09"]
	cam.Tracks[0].GlobalID = "person-aabbccdd-1234"
	cam.Tracks[0].Confidence = nil
	payload.Cameras["c09"] = cam

	result, err := p.Process(payload, 0)
	require.NoError(t, err)

	assert.Equal(t, "P-person-a", result.Cameras["c09"].Tracks[0].Label)
}

func TestProcessUnknownCameraUsesDefaultResolution(t *testing.T) {
	p := newTestProcessor(0)
	payload := examplePayload()
	payload.Cameras["c99"] = payload.Cameras["c09"]
	delete(payload.Cameras, "c09")

	result, err := p.Process(payload, 0)
	require.NoError(t, err)
	// Default is also 1920x1080, so geometry halves the same way.
	assert.Equal(t, models.BoundingBox{X1: 5, Y1: 5, X2: 25, Y2: 45}, result.Cameras["c99"].Tracks[0].DisplayBBox)
}

func TestProcessCountsFramesAndDrops(t *testing.T) {
	p := newTestProcessor(0)

	_, err := p.Process(examplePayload(), 2)
	require.NoError(t, err)
	_, err = p.Process(examplePayload(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(2), p.FramesProcessed())
	assert.Equal(t, int64(3), p.TracksDropped())
	assert.Equal(t, int64(5), p.LastFrameIndex())
}

func TestProcessDeterministicPerPayload(t *testing.T) {
	a := newTestProcessor(0)
	b := newTestProcessor(0)

	ra, err := a.Process(examplePayload(), 0)
	require.NoError(t, err)
	rb, err := b.Process(examplePayload(), 0)
	require.NoError(t, err)

	assert.Equal(t, ra.Cameras, rb.Cameras)
	assert.Equal(t, ra.GlobalIDs, rb.GlobalIDs)
}
