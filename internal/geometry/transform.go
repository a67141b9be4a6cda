// Package geometry maps detection geometry between camera-native and
// display coordinate spaces. All operations are stateless; invalid input
// (non-positive sizes, non-finite coordinates) is a configuration bug
// upstream and fails with an error instead of being clamped.
package geometry

import (
	"fmt"
	"math"

	"argus-dashboard-go/internal/models"
)

// ErrInvalidSize is wrapped by every error returned for a Size with a
// non-positive dimension.
var ErrInvalidSize = fmt.Errorf("geometry: size dimensions must be positive")

// ErrNonFinite is wrapped by every error returned for NaN/Inf coordinates.
var ErrNonFinite = fmt.Errorf("geometry: coordinate is not finite")

func checkSize(name string, s models.Size) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %s %gx%g", ErrInvalidSize, name, s.Width, s.Height)
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// UniformScale returns the single scale factor that fits source inside
// target: min(targetW/sourceW, targetH/sourceH).
func UniformScale(source, target models.Size) (float64, error) {
	if err := checkSize("source", source); err != nil {
		return 0, err
	}
	if err := checkSize("target", target); err != nil {
		return 0, err
	}
	return math.Min(target.Width/source.Width, target.Height/source.Height), nil
}

// BoxTransformer precomputes the scale and padding offsets for one
// source/target pair so a whole frame of points can be mapped without
// re-deriving factors per point.
type BoxTransformer struct {
	scaleX  float64
	scaleY  float64
	offsetX float64
	offsetY float64
}

// NewBoxTransformer builds a transformer from source to target space.
// With maintainAspectRatio the tighter of width-fit/height-fit is used and
// the scaled content is centered in the target with symmetric padding.
func NewBoxTransformer(source, target models.Size, maintainAspectRatio bool) (*BoxTransformer, error) {
	if err := checkSize("source", source); err != nil {
		return nil, err
	}
	if err := checkSize("target", target); err != nil {
		return nil, err
	}

	t := &BoxTransformer{}
	if maintainAspectRatio {
		scale := math.Min(target.Width/source.Width, target.Height/source.Height)
		t.scaleX = scale
		t.scaleY = scale
		t.offsetX = (target.Width - source.Width*scale) / 2
		t.offsetY = (target.Height - source.Height*scale) / 2
	} else {
		t.scaleX = target.Width / source.Width
		t.scaleY = target.Height / source.Height
	}
	return t, nil
}

// Apply maps a single point from source to target space.
func (t *BoxTransformer) Apply(p models.Point2D) models.Point2D {
	return models.Point2D{
		X: p.X*t.scaleX + t.offsetX,
		Y: p.Y*t.scaleY + t.offsetY,
	}
}

// Invert maps a target-space point back to source space. It is the exact
// algebraic inverse of Apply.
func (t *BoxTransformer) Invert(p models.Point2D) models.Point2D {
	return models.Point2D{
		X: (p.X - t.offsetX) / t.scaleX,
		Y: (p.Y - t.offsetY) / t.scaleY,
	}
}

// ApplyAll maps a batch of points in one pass.
func (t *BoxTransformer) ApplyAll(points []models.Point2D) []models.Point2D {
	out := make([]models.Point2D, len(points))
	for i, p := range points {
		out[i] = t.Apply(p)
	}
	return out
}

// TransformBox maps both corners independently and rounds to the nearest
// integer pixel. Rounding is half-away-from-zero in both directions so a
// transform/inverse round-trip stays within one pixel.
func (t *BoxTransformer) TransformBox(b models.BoundingBox) (models.BoundingBox, error) {
	if !finite(b.X1, b.Y1, b.X2, b.Y2) {
		return models.BoundingBox{}, fmt.Errorf("%w: bbox [%g %g %g %g]", ErrNonFinite, b.X1, b.Y1, b.X2, b.Y2)
	}
	p1 := t.Apply(models.Point2D{X: b.X1, Y: b.Y1})
	p2 := t.Apply(models.Point2D{X: b.X2, Y: b.Y2})
	return models.BoundingBox{
		X1: math.Round(p1.X),
		Y1: math.Round(p1.Y),
		X2: math.Round(p2.X),
		Y2: math.Round(p2.Y),
	}, nil
}

// TransformPoint maps one point between coordinate spaces. Prefer a
// BoxTransformer when mapping more than a couple of points per frame.
func TransformPoint(p models.Point2D, source, target models.Size, maintainAspectRatio bool) (models.Point2D, error) {
	if !finite(p.X, p.Y) {
		return models.Point2D{}, fmt.Errorf("%w: point (%g, %g)", ErrNonFinite, p.X, p.Y)
	}
	t, err := NewBoxTransformer(source, target, maintainAspectRatio)
	if err != nil {
		return models.Point2D{}, err
	}
	return t.Apply(p), nil
}

// ElementToImageCoordinates maps a display-space point back to image space
// under the same aspect-ratio mode: the inverse of TransformPoint.
func ElementToImageCoordinates(p models.Point2D, source, target models.Size, maintainAspectRatio bool) (models.Point2D, error) {
	if !finite(p.X, p.Y) {
		return models.Point2D{}, fmt.Errorf("%w: point (%g, %g)", ErrNonFinite, p.X, p.Y)
	}
	t, err := NewBoxTransformer(source, target, maintainAspectRatio)
	if err != nil {
		return models.Point2D{}, err
	}
	return t.Invert(p), nil
}

// TransformBoundingBox maps a box between coordinate spaces with integer
// pixel rounding on output.
func TransformBoundingBox(b models.BoundingBox, source, target models.Size, maintainAspectRatio bool) (models.BoundingBox, error) {
	t, err := NewBoxTransformer(source, target, maintainAspectRatio)
	if err != nil {
		return models.BoundingBox{}, err
	}
	return t.TransformBox(b)
}
