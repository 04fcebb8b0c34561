// Package cache provides a size-bounded LRU cache for rendered byte blobs.
//
// Values are treated as immutable. The cache is used for data that is
// expensive to render but never changes once produced, such as the CSV
// report of a completed iteration.
package cache
