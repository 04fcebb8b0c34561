// Package kmeans implements the two halves of Lloyd's algorithm for 2D points
// plus the centroid initialisers that seed them.
//
// The package is stateless. The session owns points, centroids and
// assignments and passes them in on every call, so each function can be
// driven at whatever cadence the caller chooses:
//
//	centroids, _ := kmeans.Initialize(points, k, kmeans.InitKMeansPlusPlus, src)
//	assignments, dists := kmeans.AssignStep(points, centroids)
//	centroids, changed := kmeans.UpdateStep(points, centroids, assignments)
package kmeans
