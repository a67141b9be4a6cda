// Package pipeline turns validated tracking payloads into display-ready
// per-camera records and maintains the cross-frame state behind them
// (trajectories and color assignments).
package pipeline

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"

	"argus-dashboard-go/internal/models"
)

// ValidationError reports a structural violation attributable to a specific
// location inside the payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid payload: %s: %s", e.Field, e.Reason)
}

// Wire shapes deliberately use pointers for required fields so that absence
// is distinguishable from zero values. Type mismatches are rejected by the
// JSON decoder itself.
type wirePayload struct {
	GlobalFrameIndex *int64                 `json:"global_frame_index"`
	SceneID          *string                `json:"scene_id"`
	TimestampUTC     *string                `json:"timestamp_processed_utc"`
	Cameras          map[string]*wireCamera `json:"cameras"`
}

type wireCamera struct {
	ImageSource string       `json:"image_source"`
	FrameImage  string       `json:"frame_image"`
	Tracks      []*wireTrack `json:"tracks"`
}

type wireTrack struct {
	TrackID    *int      `json:"track_id"`
	GlobalID   string    `json:"global_id"`
	BBox       []float64 `json:"bbox_xyxy"`
	Confidence *float64  `json:"confidence"`
	ClassID    int       `json:"class_id"`
	MapCoords  []float64 `json:"map_coords"`
}

// ParsePayload decodes and structurally validates one tracking_update
// payload. Any violation anywhere in the payload fails the whole frame; a
// corrupt camera entry must not be silently dropped from an otherwise-valid
// frame, since downstream aggregates assume completeness.
func ParsePayload(raw []byte) (*models.TrackingPayload, error) {
	var w wirePayload
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, &ValidationError{Field: "payload", Reason: err.Error()}
	}

	if w.GlobalFrameIndex == nil {
		return nil, &ValidationError{Field: "global_frame_index", Reason: "missing"}
	}
	if w.SceneID == nil {
		return nil, &ValidationError{Field: "scene_id", Reason: "missing"}
	}
	if w.TimestampUTC == nil {
		return nil, &ValidationError{Field: "timestamp_processed_utc", Reason: "missing"}
	}
	if w.Cameras == nil {
		return nil, &ValidationError{Field: "cameras", Reason: "missing"}
	}

	out := &models.TrackingPayload{
		GlobalFrameIndex: *w.GlobalFrameIndex,
		SceneID:          *w.SceneID,
		TimestampUTC:     *w.TimestampUTC,
		Cameras:          make(map[string]models.CameraTrackingData, len(w.Cameras)),
	}

	for camID, cam := range w.Cameras {
		if cam == nil {
			return nil, &ValidationError{Field: "cameras." + camID, Reason: "not an object"}
		}
		if cam.Tracks == nil {
			return nil, &ValidationError{Field: "cameras." + camID + ".tracks", Reason: "missing"}
		}

		tracks := make([]models.TrackedPerson, 0, len(cam.Tracks))
		for i, tr := range cam.Tracks {
			person, err := validateTrack(camID, i, tr)
			if err != nil {
				return nil, err
			}
			tracks = append(tracks, person)
		}

		out.Cameras[camID] = models.CameraTrackingData{
			ImageSource: cam.ImageSource,
			FrameImage:  cam.FrameImage,
			Tracks:      tracks,
		}
	}

	return out, nil
}

func validateTrack(camID string, idx int, tr *wireTrack) (models.TrackedPerson, error) {
	loc := fmt.Sprintf("cameras.%s.tracks[%d]", camID, idx)
	if tr == nil {
		return models.TrackedPerson{}, &ValidationError{Field: loc, Reason: "not an object"}
	}
	if tr.TrackID == nil {
		return models.TrackedPerson{}, &ValidationError{Field: loc + ".track_id", Reason: "missing"}
	}
	if len(tr.BBox) != 4 {
		return models.TrackedPerson{}, &ValidationError{
			Field:  loc + ".bbox_xyxy",
			Reason: fmt.Sprintf("expected 4 coordinates, got %d", len(tr.BBox)),
		}
	}
	for _, v := range tr.BBox {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return models.TrackedPerson{}, &ValidationError{Field: loc + ".bbox_xyxy", Reason: "not finite"}
		}
	}
	if tr.MapCoords != nil && len(tr.MapCoords) != 2 {
		return models.TrackedPerson{}, &ValidationError{
			Field:  loc + ".map_coords",
			Reason: fmt.Sprintf("expected 2 coordinates, got %d", len(tr.MapCoords)),
		}
	}

	person := models.TrackedPerson{
		TrackID:  *tr.TrackID,
		GlobalID: tr.GlobalID,
		BBox: models.BoundingBox{
			X1: tr.BBox[0], Y1: tr.BBox[1],
			X2: tr.BBox[2], Y2: tr.BBox[3],
		},
		Confidence: tr.Confidence,
		ClassID:    tr.ClassID,
	}
	if tr.MapCoords != nil {
		person.MapCoords = &models.Point2D{X: tr.MapCoords[0], Y: tr.MapCoords[1]}
	}
	return person, nil
}

// Sanitize clamps per-track numeric fields after whole-frame structural
// acceptance: confidence into [0,1] and bbox coordinates to non-negative
// (camera noise yields small negative pixel coordinates at frame edges).
// Tracks still invalid after clamping are dropped individually; the drop
// count is returned. This is the one place partial dropping is permitted.
func Sanitize(p *models.TrackingPayload) int {
	dropped := 0
	for camID, cam := range p.Cameras {
		kept := cam.Tracks[:0]
		for _, tr := range cam.Tracks {
			if tr.Confidence != nil {
				c := math.Min(math.Max(*tr.Confidence, 0), 1)
				tr.Confidence = &c
			}
			tr.BBox.X1 = math.Max(tr.BBox.X1, 0)
			tr.BBox.Y1 = math.Max(tr.BBox.Y1, 0)
			tr.BBox.X2 = math.Max(tr.BBox.X2, 0)
			tr.BBox.Y2 = math.Max(tr.BBox.Y2, 0)

			if tr.BBox.X2 == tr.BBox.X1 || tr.BBox.Y2 == tr.BBox.Y1 {
				// Zero extent on either axis after clamping; corners may
				// arrive unsorted, so compare for collapse, not ordering.
				dropped++
				continue
			}
			kept = append(kept, tr)
		}
		cam.Tracks = kept
		p.Cameras[camID] = cam
	}
	return dropped
}

// ParseAndSanitize runs validation and then sanitization, the only order in
// which the two are meaningful. Returns the frame, the number of tracks
// dropped during sanitization, and the validation error if the whole frame
// was rejected.
func ParseAndSanitize(raw []byte) (*models.TrackingPayload, int, error) {
	p, err := ParsePayload(raw)
	if err != nil {
		return nil, 0, err
	}
	dropped := Sanitize(p)
	return p, dropped, nil
}
