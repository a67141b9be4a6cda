package pipeline

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"argus-dashboard-go/internal/geometry"
	"argus-dashboard-go/internal/models"
)

// ProcessorConfig carries the per-deployment knobs of the tracking
// processor.
type ProcessorConfig struct {
	// DisplaySize is the on-screen target resolution geometry is mapped to.
	DisplaySize models.Size
	// CameraResolutions maps camera ids to their native resolutions.
	CameraResolutions map[string]models.Size
	// DefaultResolution is used for cameras with no configured entry.
	DefaultResolution models.Size
	// ConfidenceThreshold filters tracks scoring below it. Tracks without a
	// score are never filtered.
	ConfidenceThreshold float64
	// MaintainAspectRatio selects letterboxed uniform scaling.
	MaintainAspectRatio bool
}

// Processor orchestrates one inbound frame into display-ready per-camera
// records: geometry into display space, color and label attachment, and the
// trajectory side effect. Frames are processed strictly in arrival order by
// a single caller; no reordering by frame index happens here.
type Processor struct {
	cfg          ProcessorConfig
	colors       *ColorRegistry
	trajectories *TrajectoryProcessor
	log          zerolog.Logger

	framesProcessed atomic.Int64
	tracksDropped   atomic.Int64
	lastFrameIndex  atomic.Int64
}

// NewProcessor wires a processor with caller-owned registries so tests can
// instantiate isolated instances.
func NewProcessor(cfg ProcessorConfig, colors *ColorRegistry, trajectories *TrajectoryProcessor, log zerolog.Logger) *Processor {
	if colors == nil {
		colors = NewColorRegistry(nil)
	}
	if trajectories == nil {
		trajectories = NewTrajectoryProcessor(0, colors)
	}
	if !cfg.DefaultResolution.Valid() {
		cfg.DefaultResolution = models.Size{Width: 1920, Height: 1080}
	}
	return &Processor{
		cfg:          cfg,
		colors:       colors,
		trajectories: trajectories,
		log:          log,
	}
}

// Trajectories exposes the trajectory processor for the control surface.
func (p *Processor) Trajectories() *TrajectoryProcessor {
	return p.trajectories
}

// Colors exposes the color registry for the control surface.
func (p *Processor) Colors() *ColorRegistry {
	return p.colors
}

// cameraResolution resolves a camera's native resolution, falling back to
// the configured default.
func (p *Processor) cameraResolution(cameraID string) models.Size {
	if res, ok := p.cfg.CameraResolutions[cameraID]; ok && res.Valid() {
		return res
	}
	return p.cfg.DefaultResolution
}

// Process transforms one validated, sanitized frame into the rendering
// boundary contract. droppedDuringSanitize is folded into the result for
// diagnostics. Processing within a frame is sequential and deterministic.
func (p *Processor) Process(payload *models.TrackingPayload, droppedDuringSanitize int) (*models.FrameResult, error) {
	ts, err := time.Parse(time.RFC3339, payload.TimestampUTC)
	if err != nil {
		// Timestamp was validated as a string, not as RFC3339. Kinematics
		// fall back to receive time rather than rejecting the frame.
		ts = time.Now().UTC()
	}

	result := &models.FrameResult{
		GlobalFrameIndex: payload.GlobalFrameIndex,
		SceneID:          payload.SceneID,
		TimestampUTC:     payload.TimestampUTC,
		Cameras:          make(map[string]models.CameraDisplayData, len(payload.Cameras)),
		DroppedTracks:    droppedDuringSanitize,
	}
	globalIDs := make(map[string]struct{})

	for cameraID, cam := range payload.Cameras {
		display, err := p.processCamera(cameraID, cam, ts, globalIDs)
		if err != nil {
			return nil, fmt.Errorf("camera %s frame %d: %w", cameraID, payload.GlobalFrameIndex, err)
		}
		result.Cameras[cameraID] = display
		result.DetectionCount += len(display.Tracks)
	}

	result.GlobalIDs = make([]string, 0, len(globalIDs))
	for id := range globalIDs {
		result.GlobalIDs = append(result.GlobalIDs, id)
	}
	sort.Strings(result.GlobalIDs)

	p.framesProcessed.Add(1)
	p.tracksDropped.Add(int64(droppedDuringSanitize))
	p.lastFrameIndex.Store(payload.GlobalFrameIndex)

	return result, nil
}

func (p *Processor) processCamera(cameraID string, cam models.CameraTrackingData, ts time.Time, globalIDs map[string]struct{}) (models.CameraDisplayData, error) {
	source := p.cameraResolution(cameraID)

	// One transformer per camera per frame; scale factors are not
	// re-derived per point.
	transformer, err := geometry.NewBoxTransformer(source, p.cfg.DisplaySize, p.cfg.MaintainAspectRatio)
	if err != nil {
		return models.CameraDisplayData{}, err
	}

	display := models.CameraDisplayData{
		CameraID:    cameraID,
		ImageSource: cam.ImageSource,
		Tracks:      make([]models.TrackedPersonDisplay, 0, len(cam.Tracks)),
	}

	for _, track := range cam.Tracks {
		// A missing score is not evidence of low quality.
		if track.Confidence != nil && *track.Confidence < p.cfg.ConfidenceThreshold {
			continue
		}

		displayBox, err := transformer.TransformBox(track.BBox)
		if err != nil {
			return models.CameraDisplayData{}, fmt.Errorf("track %d: %w", track.TrackID, err)
		}
		center := geometry.Center(displayBox)

		color := DefaultTrackColor
		if track.GlobalID != "" {
			color = p.colors.ColorFor(track.GlobalID)
			globalIDs[track.GlobalID] = struct{}{}
			p.feedTrajectory(track, center, cameraID, ts)
		}

		display.Tracks = append(display.Tracks, models.TrackedPersonDisplay{
			TrackedPerson: track,
			DisplayBBox:   displayBox,
			Color:         color,
			Label:         buildLabel(track),
			Center:        center,
		})
	}

	return display, nil
}

// feedTrajectory records the ground-plane position when the backend
// supplied one, falling back to the display-space center.
func (p *Processor) feedTrajectory(track models.TrackedPerson, center models.Point2D, cameraID string, ts time.Time) {
	position := center
	if track.MapCoords != nil {
		position = *track.MapCoords
	}
	confidence := 1.0
	if track.Confidence != nil {
		confidence = *track.Confidence
	}
	p.trajectories.RecordPoint(track.GlobalID, position, cameraID, confidence, ts)
}

// buildLabel derives the human-readable track label: the global id
// shortened to 8 characters when present, the frame-local track id
// otherwise, with a confidence percentage appended when available.
func buildLabel(track models.TrackedPerson) string {
	var label string
	if track.GlobalID != "" {
		short := track.GlobalID
		if len(short) > 8 {
			short = short[:8]
		}
		label = "P-" + short
	} else {
		label = fmt.Sprintf("T-%d", track.TrackID)
	}
	if track.Confidence != nil {
		label = fmt.Sprintf("%s (%.0f%%)", label, *track.Confidence*100)
	}
	return label
}

// Stats counters, monotonic for the processor lifetime.

// FramesProcessed returns the number of frames fully processed.
func (p *Processor) FramesProcessed() int64 { return p.framesProcessed.Load() }

// TracksDropped returns the number of tracks dropped during sanitization.
func (p *Processor) TracksDropped() int64 { return p.tracksDropped.Load() }

// LastFrameIndex returns the most recently processed global frame index.
// Frames are not reordered; this is diagnostic only.
func (p *Processor) LastFrameIndex() int64 { return p.lastFrameIndex.Load() }
