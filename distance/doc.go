// Package distance provides the Euclidean distance helpers used by lloyd.
//
// Only the plain 2D Euclidean metric is supported:
//
//	d := distance.Euclidean(p, c)          // sqrt(dx² + dy²)
//	d2 := distance.SquaredEuclidean(p, c)  // dx² + dy², used by k-means++ weighting
//	row := distance.Row(p, centroids)      // distance to every centroid, in order
package distance
