package kmeans

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/lloyd/distance"
	"github.com/hupe1980/lloyd/model"
	"github.com/hupe1980/lloyd/rng"
)

var (
	// ErrUnknownInitMethod is returned for an unsupported initialisation method.
	ErrUnknownInitMethod = errors.New("unknown init method")

	// ErrTooFewPoints is returned when k exceeds the number of points or is not positive.
	ErrTooFewPoints = errors.New("not enough points for k centroids")
)

// maxRejections bounds consecutive duplicate draws in uniform initialisation
// before it switches to drawing from the unused indices directly.
const maxRejections = 1024

// InitMethod selects how initial centroids are chosen.
type InitMethod int

const (
	// InitUniform picks k distinct points uniformly at random.
	InitUniform InitMethod = iota
	// InitKMeansPlusPlus picks points with probability proportional to their
	// squared distance from the nearest centroid chosen so far.
	InitKMeansPlusPlus
)

func (m InitMethod) String() string {
	switch m {
	case InitUniform:
		return "uniform"
	case InitKMeansPlusPlus:
		return "kmeans++"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m InitMethod) MarshalText() ([]byte, error) {
	switch m {
	case InitUniform, InitKMeansPlusPlus:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownInitMethod, int(m))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *InitMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseInitMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseInitMethod resolves a method name. "random" is accepted as an alias of "uniform".
func ParseInitMethod(name string) (InitMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "uniform", "random":
		return InitUniform, nil
	case "kmeans++", "kmeanspp", "k-means++", "plusplus":
		return InitKMeansPlusPlus, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownInitMethod, name)
	}
}

// Initialize chooses k initial centroids from points.
// Every centroid is a copy of a point's coordinates.
func Initialize(points []model.Point, k int, method InitMethod, src *rng.Source) ([]model.Centroid, error) {
	if k < 1 || len(points) < k {
		return nil, fmt.Errorf("%w: k=%d, points=%d", ErrTooFewPoints, k, len(points))
	}

	switch method {
	case InitUniform:
		return initUniform(points, k, src), nil
	case InitKMeansPlusPlus:
		return initKMeansPlusPlus(points, k, src), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownInitMethod, int(method))
	}
}

// initUniform draws indices until k distinct ones are collected.
// After maxRejections duplicates in a row the rest are taken by a partial
// Fisher-Yates shuffle over the unused indices, still driven by src.
func initUniform(points []model.Point, k int, src *rng.Source) []model.Centroid {
	n := len(points)
	centroids := make([]model.Centroid, 0, k)
	used := make(map[int]struct{}, k)

	rejections := 0
	for len(centroids) < k && rejections < maxRejections {
		idx := src.Intn(n)
		if _, dup := used[idx]; dup {
			rejections++
			continue
		}
		rejections = 0
		used[idx] = struct{}{}
		centroids = append(centroids, model.CentroidOf(points[idx]))
	}

	if len(centroids) == k {
		return centroids
	}

	pool := make([]int, 0, n-len(used))
	for i := 0; i < n; i++ {
		if _, ok := used[i]; !ok {
			pool = append(pool, i)
		}
	}
	for i := 0; len(centroids) < k; i++ {
		j := i + src.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		centroids = append(centroids, model.CentroidOf(points[pool[i]]))
	}

	return centroids
}

// initKMeansPlusPlus implements k-means++ seeding with a roulette-wheel draw.
func initKMeansPlusPlus(points []model.Point, k int, src *rng.Source) []model.Centroid {
	n := len(points)
	centroids := make([]model.Centroid, 0, k)
	centroids = append(centroids, model.CentroidOf(points[src.Intn(n)]))

	weights := make([]float64, n)
	for len(centroids) < k {
		var sum float64
		for i, p := range points {
			d := distance.Euclidean(p, centroids[0])
			for _, c := range centroids[1:] {
				d = min(d, distance.Euclidean(p, c))
			}
			weights[i] = d * d
			sum += weights[i]
		}

		chosen := -1
		r := src.Next() * sum
		for i, w := range weights {
			r -= w
			if r <= 0 {
				chosen = i
				break
			}
		}

		// Rounding can leave a tiny positive remainder after the last point.
		if chosen < 0 {
			chosen = lastPositive(weights)
		}

		centroids = append(centroids, model.CentroidOf(points[chosen]))
	}

	return centroids
}

func lastPositive(weights []float64) int {
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return len(weights) - 1
}
