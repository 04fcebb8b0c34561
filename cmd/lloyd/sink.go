package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/lloyd"
	"github.com/hupe1980/lloyd/blobstore"
	miniostore "github.com/hupe1980/lloyd/blobstore/minio"
	s3store "github.com/hupe1980/lloyd/blobstore/s3"
	"github.com/hupe1980/lloyd/export"
	"github.com/hupe1980/lloyd/internal/config"
)

func newExporter(ctx context.Context, cfg *config.Config, logger *lloyd.Logger, metrics lloyd.MetricsCollector) (*export.Exporter, error) {
	store, err := newStore(ctx, cfg.Export)
	if err != nil {
		return nil, err
	}
	compression, err := cfg.Compression()
	if err != nil {
		return nil, err
	}

	return export.New(store, func(o *export.Options) {
		o.Prefix = cfg.Export.Prefix
		o.Compression = compression
		o.Concurrency = cfg.Export.Concurrency
		o.Logger = logger.Logger
		o.Recorder = metrics
	}), nil
}

func newStore(ctx context.Context, cfg config.ExportConfig) (blobstore.Store, error) {
	switch cfg.Sink {
	case "s3":
		var optFns []func(*awsconfig.LoadOptions) error
		if cfg.Region != "" {
			optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = true
			}
		})
		return s3store.NewStore(client, cfg.Bucket, ""), nil
	case "minio":
		client, err := minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return miniostore.NewStore(client, cfg.Bucket, ""), nil
	default:
		return blobstore.NewLocalStore(cfg.Dir), nil
	}
}
