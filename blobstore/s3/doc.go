// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion("eu-central-1"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "lloyd/reports")
//	exp := export.New(store)
//
// # Features
//
//   - Multipart streaming uploads through feature/s3/manager
//   - CRC32C integrity checks on single-shot puts
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
