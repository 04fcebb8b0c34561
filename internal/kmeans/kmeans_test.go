package kmeans

import (
	"testing"

	"github.com/hupe1980/lloyd/dataset"
	"github.com/hupe1980/lloyd/model"
	"github.com/hupe1980/lloyd/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignStep(t *testing.T) {
	points := []model.Point{{X: 0, Y: 0}, {X: 0.5, Y: 0.5}, {X: 10, Y: 10}, {X: 10.5, Y: 9}}
	centroids := []model.Centroid{{X: 0, Y: 0}, {X: 10, Y: 10}}

	assignments, dists := AssignStep(points, centroids)
	assert.Equal(t, []int{0, 0, 1, 1}, assignments)
	require.Len(t, dists, 4)

	for i, d := range dists {
		assert.Equal(t, i, d.Point)
		assert.Len(t, d.ToCluster, 2)
		assert.Equal(t, d.ToCluster[d.Cluster], d.Distance)
		for _, other := range d.ToCluster {
			assert.LessOrEqual(t, d.Distance, other)
		}
	}

	t.Run("FirstMinimumWins", func(t *testing.T) {
		tied := []model.Centroid{{X: -1, Y: 0}, {X: 1, Y: 0}, {X: -1, Y: 0}}
		a, _ := AssignStep([]model.Point{{X: 0, Y: 0}}, tied)
		assert.Equal(t, []int{0}, a)

		a, _ = AssignStep([]model.Point{{X: -1, Y: 0}}, []model.Centroid{{X: 5, Y: 5}, {X: -1, Y: 0}, {X: -1, Y: 0}})
		assert.Equal(t, []int{1}, a)
	})

	t.Run("NoCentroids", func(t *testing.T) {
		a, d := AssignStep(points, nil)
		assert.Equal(t, []int{-1, -1, -1, -1}, a)
		assert.Nil(t, d)
	})
}

func TestUpdateStep(t *testing.T) {
	points := []model.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 10, Y: 10}, {X: 12, Y: 14}}
	centroids := []model.Centroid{{X: 0, Y: 0}, {X: 10, Y: 10}}

	next, changed := UpdateStep(points, centroids, []int{0, 0, 1, 1})
	assert.True(t, changed)
	assert.Equal(t, model.Centroid{X: 1, Y: 0}, next[0])
	assert.Equal(t, model.Centroid{X: 11, Y: 12}, next[1])

	// Input centroids are not mutated.
	assert.Equal(t, model.Centroid{X: 0, Y: 0}, centroids[0])

	t.Run("FixedPoint", func(t *testing.T) {
		again, changed := UpdateStep(points, next, []int{0, 0, 1, 1})
		assert.False(t, changed)
		assert.Equal(t, next, again)
	})

	t.Run("EmptyClusterKeepsCentroid", func(t *testing.T) {
		c := []model.Centroid{{X: 1, Y: 0}, {X: 11, Y: 12}, {X: -50, Y: -50}}
		out, changed := UpdateStep(points, c, []int{0, 0, 1, 1})
		assert.False(t, changed)
		assert.Equal(t, c[2], out[2])
	})

	t.Run("MovementBelowEpsilon", func(t *testing.T) {
		c := []model.Centroid{{X: 1 + Epsilon/2, Y: 0}, {X: 11, Y: 12}}
		_, changed := UpdateStep(points, c, []int{0, 0, 1, 1})
		assert.False(t, changed)
	})

	t.Run("UnassignedIgnored", func(t *testing.T) {
		out, _ := UpdateStep(points, centroids, []int{0, -1, -1, -1})
		assert.Equal(t, model.Centroid{X: 0, Y: 0}, out[0])
		assert.Equal(t, centroids[1], out[1])
	})
}

func TestUpdateStep_MeanProperty(t *testing.T) {
	for _, seed := range []int64{1, 42, 99, 2024} {
		points := dataset.Generate(120, 4, rng.New(seed))
		centroids, err := Initialize(points, 4, InitKMeansPlusPlus, rng.New(seed+1))
		require.NoError(t, err)

		assignments, _ := AssignStep(points, centroids)
		next, _ := UpdateStep(points, centroids, assignments)

		for c := range next {
			var sx, sy float64
			n := 0
			for i, a := range assignments {
				if a == c {
					sx += points[i].X
					sy += points[i].Y
					n++
				}
			}
			if n == 0 {
				assert.Equal(t, centroids[c], next[c])
				continue
			}
			assert.InDelta(t, sx/float64(n), next[c].X, 1e-9)
			assert.InDelta(t, sy/float64(n), next[c].Y, 1e-9)
		}
	}
}

func TestConvergenceIdempotent(t *testing.T) {
	points := dataset.Generate(200, 5, rng.New(7))
	centroids, err := Initialize(points, 5, InitUniform, rng.New(8))
	require.NoError(t, err)

	converged := false
	for i := 0; i < MaxIterations; i++ {
		assignments, _ := AssignStep(points, centroids)
		var changed bool
		centroids, changed = UpdateStep(points, centroids, assignments)
		if !changed {
			converged = true
			break
		}
	}
	require.True(t, converged)

	assignments, _ := AssignStep(points, centroids)
	again, changed := UpdateStep(points, centroids, assignments)
	assert.False(t, changed)
	for c := range centroids {
		assert.InDelta(t, centroids[c].X, again[c].X, Epsilon)
		assert.InDelta(t, centroids[c].Y, again[c].Y, Epsilon)
	}
}

func TestMembersAndSizes(t *testing.T) {
	assignments := []int{0, 2, 2, -1, 0, 2}
	members := Members(assignments, 3)
	require.Len(t, members, 3)
	assert.Equal(t, []uint32{0, 4}, members[0].ToArray())
	assert.True(t, members[1].IsEmpty())
	assert.Equal(t, []uint32{1, 2, 5}, members[2].ToArray())

	assert.Equal(t, []int{2, 0, 3}, Sizes(assignments, 3))
}

func TestInertia(t *testing.T) {
	points := []model.Point{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 1, Y: 1}}
	centroids := []model.Centroid{{X: 0, Y: 0}}
	assert.InDelta(t, 25.0, Inertia(points, centroids, []int{0, 0, -1}), 1e-12)
	assert.Equal(t, 0.0, Inertia(nil, centroids, nil))
}

func TestUnassigned(t *testing.T) {
	assert.Equal(t, []int{-1, -1, -1}, Unassigned(3))
	assert.Empty(t, Unassigned(0))
}
