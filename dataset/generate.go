package dataset

import (
	"math"

	"github.com/hupe1980/lloyd/model"
	"github.com/hupe1980/lloyd/rng"
)

const (
	// MaxBlobs caps the number of synthetic blob centres.
	MaxBlobs = 5
	// Extent is the side length of the square that holds blob centres and stray points.
	Extent = 20.0
	// BlobRadius is the maximum distance of a blob point from its centre.
	BlobRadius = 3.0
)

// Generate returns numPoints synthetic points grouped around min(MaxBlobs, k) centres.
// Values are drawn from src in a fixed order, so the result depends only on
// (numPoints, k) and the cursor of src on entry.
func Generate(numPoints, k int, src *rng.Source) []model.Point {
	if numPoints <= 0 || k <= 0 {
		return []model.Point{}
	}

	blobs := min(MaxBlobs, k)
	perBlob := numPoints / blobs

	points := make([]model.Point, 0, numPoints)

	for i := 0; i < blobs; i++ {
		cx := (src.Next() - 0.5) * Extent
		cy := (src.Next() - 0.5) * Extent

		for j := 0; j < perBlob; j++ {
			angle := src.Next() * 2 * math.Pi
			radius := src.Next() * BlobRadius
			points = append(points, model.Point{
				X: cx + radius*math.Cos(angle),
				Y: cy + radius*math.Sin(angle),
			})
		}
	}

	remaining := numPoints - perBlob*blobs
	for i := 0; i < remaining; i++ {
		x := (src.Next() - 0.5) * Extent
		y := (src.Next() - 0.5) * Extent
		points = append(points, model.Point{X: x, Y: y})
	}

	return points
}
