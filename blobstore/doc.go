// Package blobstore provides storage abstraction for exported clustering reports.
//
// Store is the interface for writing and reading named blobs (CSV tables,
// snapshots). Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, used by tests and dry runs
//   - LocalStore: local filesystem with atomic renames
//   - s3.Store: Amazon S3 with multipart streaming uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type Store interface {
//	    Put(ctx, name, data) error                 // Atomic write
//	    Create(ctx, name) (WritableBlob, error)    // Streaming write
//	    Get(ctx, name) ([]byte, error)
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Names use forward slashes regardless of the backend.
package blobstore
