package geometry

import (
	"math"

	"argus-dashboard-go/internal/models"
)

// normalize returns the box with sorted corner ordering. Inbound boxes are
// not guaranteed to have x1<x2 / y1<y2.
func normalize(b models.BoundingBox) models.BoundingBox {
	return models.BoundingBox{
		X1: math.Min(b.X1, b.X2),
		Y1: math.Min(b.Y1, b.Y2),
		X2: math.Max(b.X1, b.X2),
		Y2: math.Max(b.Y1, b.Y2),
	}
}

// Center returns the midpoint of a bounding box.
func Center(b models.BoundingBox) models.Point2D {
	return models.Point2D{
		X: (b.X1 + b.X2) / 2,
		Y: (b.Y1 + b.Y2) / 2,
	}
}

// BoxSize returns the width and height of a bounding box.
func BoxSize(b models.BoundingBox) models.Size {
	n := normalize(b)
	return models.Size{Width: n.X2 - n.X1, Height: n.Y2 - n.Y1}
}

// Area returns the area of a bounding box.
func Area(b models.BoundingBox) float64 {
	s := BoxSize(b)
	return s.Width * s.Height
}

// IoU computes intersection-over-union of two boxes. Disjoint boxes yield
// 0. Symmetric for all inputs.
func IoU(a, b models.BoundingBox) float64 {
	na, nb := normalize(a), normalize(b)

	ix1 := math.Max(na.X1, nb.X1)
	iy1 := math.Max(na.Y1, nb.Y1)
	ix2 := math.Min(na.X2, nb.X2)
	iy2 := math.Min(na.Y2, nb.Y2)

	iw := ix2 - ix1
	ih := iy2 - iy1
	if iw <= 0 || ih <= 0 {
		return 0
	}

	intersection := iw * ih
	union := Area(na) + Area(nb) - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}
