package models

import (
	"time"
)

// Point2D is a real-valued screen or image coordinate. Always a value type.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size holds positive real dimensions. Both fields must be > 0; every
// boundary that constructs one validates this.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are strictly positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// BoundingBox is an axis-aligned rectangle in some coordinate space.
// x1/x2 and y1/y2 are not required to be pre-sorted; geometric operations
// take min/max defensively.
type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// TrackedPerson is one detection within one frame/camera. Records are
// created fresh for every inbound frame and never mutated in place.
type TrackedPerson struct {
	TrackID    int         `json:"track_id"`
	GlobalID   string      `json:"global_id,omitempty"` // empty = not yet re-identified
	BBox       BoundingBox `json:"bbox_xyxy"`
	Confidence *float64    `json:"confidence,omitempty"`
	ClassID    int         `json:"class_id"`
	MapCoords  *Point2D    `json:"map_coords,omitempty"` // ground-plane position, optional
}

// TrackedPersonDisplay is a TrackedPerson enriched with display-space
// geometry and visual identity. Derived per frame, never persisted.
type TrackedPersonDisplay struct {
	TrackedPerson
	DisplayBBox BoundingBox `json:"display_bbox"`
	Color       string      `json:"color"`
	Label       string      `json:"label"`
	Center      Point2D     `json:"center"`
}

// CameraTrackingData is one camera's contribution to a frame.
type CameraTrackingData struct {
	ImageSource string          `json:"image_source"`
	FrameImage  string          `json:"frame_image,omitempty"` // base64, opaque to this core
	Tracks      []TrackedPerson `json:"tracks"`
}

// TrackingPayload is one full frame across all cameras of a scene. It is
// constructed from one inbound message, consumed synchronously, then
// discarded; only the derived trajectory excerpt survives processing.
type TrackingPayload struct {
	GlobalFrameIndex int64                         `json:"global_frame_index"`
	SceneID          string                        `json:"scene_id"`
	TimestampUTC     string                        `json:"timestamp_processed_utc"`
	Cameras          map[string]CameraTrackingData `json:"cameras"`
}

// TrajectoryPoint is one retained position sample of a tracked person.
type TrajectoryPoint struct {
	Position   Point2D   `json:"position"`
	Timestamp  time.Time `json:"timestamp"`
	CameraID   string    `json:"camera_id"`
	Confidence float64   `json:"confidence"`
}

// PersonTrajectoryData is the bounded movement history of one global id,
// plus kinematics derived over the retained window only. Owned exclusively
// by the trajectory processor; readers get copies.
type PersonTrajectoryData struct {
	GlobalID      string            `json:"global_id"`
	Points        []TrajectoryPoint `json:"points"`
	TotalDistance float64           `json:"total_distance"`
	AverageSpeed  float64           `json:"average_speed"`
	Color         string            `json:"color"`
	LastUpdated   time.Time         `json:"last_updated"`
}

// CameraDisplayData is the per-camera slice of a processed frame handed to
// the rendering boundary.
type CameraDisplayData struct {
	CameraID    string                 `json:"camera_id"`
	ImageSource string                 `json:"image_source"`
	Tracks      []TrackedPersonDisplay `json:"tracks"`
}

// FrameResult is the rendering-boundary contract for one processed frame.
// Consumers must treat it as a read-only snapshot.
type FrameResult struct {
	GlobalFrameIndex int64                        `json:"global_frame_index"`
	SceneID          string                       `json:"scene_id"`
	TimestampUTC     string                       `json:"timestamp_processed_utc"`
	Cameras          map[string]CameraDisplayData `json:"cameras"`
	DetectionCount   int                          `json:"detection_count"`
	GlobalIDs        []string                     `json:"global_ids"`
	DroppedTracks    int                          `json:"dropped_tracks"`
}
