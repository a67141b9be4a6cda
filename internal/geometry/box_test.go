package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"argus-dashboard-go/internal/models"
)

func TestIoUIdentity(t *testing.T) {
	box := models.BoundingBox{X1: 10, Y1: 20, X2: 110, Y2: 220}
	assert.InDelta(t, 1.0, IoU(box, box), 1e-9)
}

func TestIoUDisjoint(t *testing.T) {
	a := models.BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 10}
	b := models.BoundingBox{X1: 20, Y1: 20, X2: 30, Y2: 30}
	assert.Zero(t, IoU(a, b))

	// Touching edges have zero-area intersection.
	c := models.BoundingBox{X1: 10, Y1: 0, X2: 20, Y2: 10}
	assert.Zero(t, IoU(a, c))
}

func TestIoUSymmetric(t *testing.T) {
	cases := [][2]models.BoundingBox{
		{{X1: 0, Y1: 0, X2: 10, Y2: 10}, {X1: 5, Y1: 5, X2: 15, Y2: 15}},
		{{X1: 0, Y1: 0, X2: 100, Y2: 50}, {X1: 25, Y1: 10, X2: 75, Y2: 40}},
		{{X1: -5, Y1: -5, X2: 5, Y2: 5}, {X1: 0, Y1: 0, X2: 3, Y2: 3}},
	}
	for _, pair := range cases {
		assert.InDelta(t, IoU(pair[0], pair[1]), IoU(pair[1], pair[0]), 1e-12)
	}
}

func TestIoUPartialOverlap(t *testing.T) {
	a := models.BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 10}
	b := models.BoundingBox{X1: 5, Y1: 0, X2: 15, Y2: 10}
	// Intersection 50, union 150.
	assert.InDelta(t, 50.0/150.0, IoU(a, b), 1e-9)
}

func TestIoUUnsortedCorners(t *testing.T) {
	a := models.BoundingBox{X1: 10, Y1: 10, X2: 0, Y2: 0}
	b := models.BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 10}
	assert.InDelta(t, 1.0, IoU(a, b), 1e-9)
}

func TestCenter(t *testing.T) {
	c := Center(models.BoundingBox{X1: 10, Y1: 20, X2: 30, Y2: 60})
	assert.Equal(t, models.Point2D{X: 20, Y: 40}, c)
}

func TestBoxSizeAndArea(t *testing.T) {
	box := models.BoundingBox{X1: 50, Y1: 90, X2: 10, Y2: 10}
	s := BoxSize(box)
	assert.Equal(t, models.Size{Width: 40, Height: 80}, s)
	assert.InDelta(t, 3200, Area(box), 1e-9)
}
