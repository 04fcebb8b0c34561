package kmeans

import (
	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/lloyd/distance"
	"github.com/hupe1980/lloyd/history"
	"github.com/hupe1980/lloyd/model"
)

const (
	// Epsilon is the largest centroid movement still considered "not moved".
	Epsilon = 1e-4

	// MaxIterations is the default hard cap on assign+update cycles.
	MaxIterations = 100
)

// AssignStep assigns every point to its nearest centroid.
// It returns the assignment vector and the full distance table for the step.
// Ties go to the lowest centroid index. Without centroids nothing is assigned.
func AssignStep(points []model.Point, centroids []model.Centroid) ([]int, []history.PointDistance) {
	if len(centroids) == 0 {
		return Unassigned(len(points)), nil
	}

	assignments := make([]int, len(points))
	dists := make([]history.PointDistance, len(points))

	for i, p := range points {
		row := distance.Row(p, centroids)
		best := floats.MinIdx(row)

		assignments[i] = best
		dists[i] = history.PointDistance{
			Point:     i,
			Cluster:   best,
			Distance:  row[best],
			ToCluster: row,
		}
	}

	return assignments, dists
}

// UpdateStep moves every centroid to the mean of its members.
// A cluster without members keeps its previous centroid.
// changed is true iff any centroid moved by more than Epsilon.
func UpdateStep(points []model.Point, centroids []model.Centroid, assignments []int) ([]model.Centroid, bool) {
	k := len(centroids)
	sumX := make([]float64, k)
	sumY := make([]float64, k)
	counts := make([]int, k)

	for i, p := range points {
		c := assignments[i]
		if c < 0 || c >= k {
			continue
		}
		sumX[c] += p.X
		sumY[c] += p.Y
		counts[c]++
	}

	next := make([]model.Centroid, k)
	changed := false

	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			next[c] = centroids[c]
			continue
		}

		n := float64(counts[c])
		next[c] = model.Centroid{X: sumX[c] / n, Y: sumY[c] / n}

		if distance.Movement(centroids[c], next[c]) > Epsilon {
			changed = true
		}
	}

	return next, changed
}

// Members returns the membership of each cluster as a bitmap of point indices.
// Unassigned points (negative cluster) belong to no bitmap.
func Members(assignments []int, k int) []*roaring.Bitmap {
	members := make([]*roaring.Bitmap, k)
	for c := range members {
		members[c] = roaring.New()
	}
	for i, c := range assignments {
		if c >= 0 && c < k {
			members[c].Add(uint32(i))
		}
	}
	return members
}

// Sizes returns the number of points assigned to each cluster.
func Sizes(assignments []int, k int) []int {
	sizes := make([]int, k)
	for _, c := range assignments {
		if c >= 0 && c < k {
			sizes[c]++
		}
	}
	return sizes
}

// Inertia returns the within-cluster sum of squared distances.
// Unassigned points are ignored.
func Inertia(points []model.Point, centroids []model.Centroid, assignments []int) float64 {
	sq := make([]float64, 0, len(points))
	for i, p := range points {
		c := assignments[i]
		if c < 0 || c >= len(centroids) {
			continue
		}
		sq = append(sq, distance.SquaredEuclidean(p, centroids[c]))
	}
	return floats.Sum(sq)
}

// Unassigned returns an assignment vector of length n with every point set to -1.
func Unassigned(n int) []int {
	a := make([]int, n)
	for i := range a {
		a[i] = -1
	}
	return a
}
