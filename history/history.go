package history

import (
	"errors"
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/lloyd/internal/cache"
	"github.com/hupe1980/lloyd/model"
)

// ErrNotFound is returned when no record exists for an iteration.
var ErrNotFound = errors.New("no data for iteration")

// DefaultCacheBytes is the capacity of the rendered CSV cache.
const DefaultCacheBytes = 4 << 20

// PointDistance is the assign-step outcome for a single point.
type PointDistance struct {
	// Point is the index of the point in the working set.
	Point int `json:"point"`
	// Cluster is the index of the nearest centroid.
	Cluster int `json:"cluster"`
	// Distance is the distance to the nearest centroid.
	Distance float64 `json:"distance"`
	// ToCluster holds the distance to every centroid, in centroid order.
	ToCluster []float64 `json:"to_cluster"`
}

// Record is the distance table of one completed assign-step.
type Record struct {
	// Iteration is the 1-based iteration number.
	Iteration int             `json:"iteration"`
	Distances []PointDistance `json:"distances"`
}

// Assignments returns the cluster of every point in the record.
func (r Record) Assignments() []int {
	a := make([]int, len(r.Distances))
	for i, d := range r.Distances {
		a[i] = d.Cluster
	}
	return a
}

// Inertia returns the sum of squared distances to the assigned centroids.
func (r Record) Inertia() float64 {
	var sum float64
	for _, d := range r.Distances {
		sum += d.Distance * d.Distance
	}
	return sum
}

// History is the iteration ledger of one clustering run.
// It is safe for concurrent use.
type History struct {
	mu         sync.RWMutex
	points     []model.Point
	k          int
	records    []Record
	trajectory [][]model.Centroid

	// gen changes on every Begin so cached tables of an earlier run are never served.
	gen      uint64
	csvCache *cache.LRU[csvKey]
}

type csvKey struct {
	gen       uint64
	iteration int
}

// New creates an empty History.
func New() *History {
	return &History{
		csvCache: cache.NewLRU[csvKey](DefaultCacheBytes),
	}
}

// Begin clears the ledger and binds it to the point set and cluster count of a new run.
// The points slice must not be modified afterwards.
func (h *History) Begin(points []model.Point, k int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.reset(points, k)
	gen := h.gen
	h.csvCache.Invalidate(func(key csvKey) bool { return key.gen != gen })
}

// Clear drops all records, the trajectory and the bound point set.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.reset(nil, 0)
	h.csvCache.Purge()
}

func (h *History) reset(points []model.Point, k int) {
	h.points = points
	h.k = k
	h.records = nil
	h.trajectory = nil
	h.gen++
}

// Append adds the record of a completed assign-step.
// Iteration numbers must be consecutive, starting at 1.
func (h *History) Append(rec Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if want := len(h.records) + 1; rec.Iteration != want {
		return fmt.Errorf("history: out of order record: got iteration %d, want %d", rec.Iteration, want)
	}
	if len(rec.Distances) != len(h.points) {
		return fmt.Errorf("history: record covers %d points, run has %d", len(rec.Distances), len(h.points))
	}

	h.records = append(h.records, rec)
	return nil
}

// AppendTrajectory adds the centroid positions after an update-step.
func (h *History) AppendTrajectory(centroids []model.Centroid) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.trajectory = append(h.trajectory, model.CloneCentroids(centroids))
}

// Get returns the record for a 1-based iteration.
func (h *History) Get(iteration int) (Record, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.getLocked(iteration)
}

func (h *History) getLocked(iteration int) (Record, error) {
	if iteration < 1 || iteration > len(h.records) {
		return Record{}, fmt.Errorf("%w %d", ErrNotFound, iteration)
	}
	return h.records[iteration-1], nil
}

// Latest returns the most recent record.
func (h *History) Latest() (Record, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.records) == 0 {
		return Record{}, false
	}
	return h.records[len(h.records)-1], true
}

// Len returns the number of records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// K returns the cluster count of the current run.
func (h *History) K() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.k
}

// Records returns all records in iteration order.
func (h *History) Records() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Trajectory returns every centroid snapshot in update order.
func (h *History) Trajectory() [][]model.Centroid {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([][]model.Centroid, len(h.trajectory))
	for i, snap := range h.trajectory {
		out[i] = model.CloneCentroids(snap)
	}
	return out
}

// Path returns the positions of a single centroid across all update-steps.
func (h *History) Path(cluster int) []model.Centroid {
	h.mu.RLock()
	defer h.mu.RUnlock()

	path := make([]model.Centroid, 0, len(h.trajectory))
	for _, snap := range h.trajectory {
		if cluster >= 0 && cluster < len(snap) {
			path = append(path, snap[cluster])
		}
	}
	return path
}

// Churn returns the points whose assignment changed in the given iteration
// compared to the previous one. In iteration 1 every point counts as changed.
func (h *History) Churn(iteration int) (*roaring.Bitmap, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rec, err := h.getLocked(iteration)
	if err != nil {
		return nil, err
	}

	changed := roaring.New()
	if iteration == 1 {
		changed.AddRange(0, uint64(len(rec.Distances)))
		return changed, nil
	}

	prev := h.records[iteration-2]
	for i, d := range rec.Distances {
		if prev.Distances[i].Cluster != d.Cluster {
			changed.Add(uint32(i))
		}
	}
	return changed, nil
}
