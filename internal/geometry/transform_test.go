package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"argus-dashboard-go/internal/models"
)

var (
	hd      = models.Size{Width: 1920, Height: 1080}
	display = models.Size{Width: 960, Height: 540}
)

func TestUniformScale(t *testing.T) {
	scale, err := UniformScale(hd, display)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, scale, 1e-9)

	// Mismatched aspect: the tighter fit wins.
	scale, err = UniformScale(models.Size{Width: 1000, Height: 1000}, models.Size{Width: 500, Height: 250})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, scale, 1e-9)
}

func TestUniformScaleRejectsInvalidSizes(t *testing.T) {
	_, err := UniformScale(models.Size{Width: 0, Height: 1080}, display)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = UniformScale(hd, models.Size{Width: 960, Height: -1})
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestTransformPointPlainScaling(t *testing.T) {
	p, err := TransformPoint(models.Point2D{X: 960, Y: 540}, hd, display, false)
	require.NoError(t, err)
	assert.InDelta(t, 480, p.X, 1e-9)
	assert.InDelta(t, 270, p.Y, 1e-9)
}

func TestTransformPointAspectPadding(t *testing.T) {
	// 1920x1080 into a square target: uniform scale 1000/1920, content
	// centered vertically with symmetric padding.
	square := models.Size{Width: 1000, Height: 1000}
	p, err := TransformPoint(models.Point2D{X: 0, Y: 0}, hd, square, true)
	require.NoError(t, err)
	assert.InDelta(t, 0, p.X, 1e-9)

	scale := 1000.0 / 1920.0
	wantOffsetY := (1000 - 1080*scale) / 2
	assert.InDelta(t, wantOffsetY, p.Y, 1e-9)
}

func TestTransformRoundTrip(t *testing.T) {
	points := []models.Point2D{
		{X: 0, Y: 0},
		{X: 1920, Y: 1080},
		{X: 123.456, Y: 789.012},
		{X: 1, Y: 1079},
	}
	targets := []models.Size{
		display,
		{Width: 640, Height: 640},
		{Width: 3840, Height: 2160},
		{Width: 333, Height: 777},
	}

	for _, target := range targets {
		for _, maintainAspect := range []bool{true, false} {
			for _, p := range points {
				forward, err := TransformPoint(p, hd, target, maintainAspect)
				require.NoError(t, err)
				back, err := ElementToImageCoordinates(forward, hd, target, maintainAspect)
				require.NoError(t, err)
				assert.InDelta(t, p.X, back.X, 1e-6)
				assert.InDelta(t, p.Y, back.Y, 1e-6)
			}
		}
	}
}

func TestTransformBoundingBoxHalvesHDBox(t *testing.T) {
	// 1920x1080 camera onto an aspect-matched 960x540 display: every
	// coordinate exactly halves.
	box, err := TransformBoundingBox(models.BoundingBox{X1: 10, Y1: 10, X2: 50, Y2: 90}, hd, display, true)
	require.NoError(t, err)
	assert.Equal(t, models.BoundingBox{X1: 5, Y1: 5, X2: 25, Y2: 45}, box)
}

func TestTransformBoundingBoxRoundsToPixels(t *testing.T) {
	box, err := TransformBoundingBox(models.BoundingBox{X1: 11, Y1: 13, X2: 19, Y2: 21}, hd, display, true)
	require.NoError(t, err)
	// 5.5 -> 6, 6.5 -> 7: half away from zero.
	assert.Equal(t, models.BoundingBox{X1: 6, Y1: 7, X2: 10, Y2: 11}, box)
}

func TestTransformBoundingBoxRejectsNonFinite(t *testing.T) {
	nan := models.BoundingBox{X1: 0, Y1: 0, X2: math.NaN(), Y2: 10}
	_, err := TransformBoundingBox(nan, hd, display, true)
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestBoxTransformerBatch(t *testing.T) {
	tr, err := NewBoxTransformer(hd, display, true)
	require.NoError(t, err)

	points := []models.Point2D{{X: 0, Y: 0}, {X: 100, Y: 200}, {X: 1920, Y: 1080}}
	out := tr.ApplyAll(points)
	require.Len(t, out, len(points))
	for i, p := range points {
		single := tr.Apply(p)
		assert.Equal(t, single, out[i])
	}
}
