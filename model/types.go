package model

import (
	"fmt"
	"math"
)

// Point is a single 2D observation.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", p.X, p.Y)
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Centroid is the centre of a cluster.
type Centroid struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CentroidOf copies the coordinates of p into a new Centroid.
func CentroidOf(p Point) Centroid {
	return Centroid{X: p.X, Y: p.Y}
}

// Point returns the centroid position as a Point.
func (c Centroid) Point() Point {
	return Point{X: c.X, Y: c.Y}
}

// String returns a string representation of the Centroid.
func (c Centroid) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", c.X, c.Y)
}

// ClonePoints returns a copy of points.
func ClonePoints(points []Point) []Point {
	if points == nil {
		return nil
	}
	out := make([]Point, len(points))
	copy(out, points)
	return out
}

// CloneCentroids returns a copy of centroids.
func CloneCentroids(centroids []Centroid) []Centroid {
	if centroids == nil {
		return nil
	}
	out := make([]Centroid, len(centroids))
	copy(out, centroids)
	return out
}
