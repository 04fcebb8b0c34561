package distance

import (
	"math"

	"github.com/hupe1980/lloyd/model"
)

// SquaredEuclidean calculates the squared Euclidean distance between a point and a centroid.
func SquaredEuclidean(p model.Point, c model.Centroid) float64 {
	dx := p.X - c.X
	dy := p.Y - c.Y
	return dx*dx + dy*dy
}

// Euclidean calculates the Euclidean distance between a point and a centroid.
func Euclidean(p model.Point, c model.Centroid) float64 {
	return math.Sqrt(SquaredEuclidean(p, c))
}

// Movement returns how far a centroid moved between two positions.
func Movement(from, to model.Centroid) float64 {
	return Euclidean(from.Point(), to)
}

// Row returns the distance from p to every centroid, in centroid order.
func Row(p model.Point, centroids []model.Centroid) []float64 {
	row := make([]float64, len(centroids))
	for i, c := range centroids {
		row[i] = Euclidean(p, c)
	}
	return row
}
