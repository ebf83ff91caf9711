// Package s3 issues presigned download URLs for book assets stored in S3.
// Uploading the assets happens out-of-band (publishing tooling); this
// service only ever reads.
package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Favour123/paystack-api/internal/application/ports"
	"github.com/Favour123/paystack-api/internal/config"
)

// Storage implements the ObjectStorage port for AWS S3
type Storage struct {
	presigner *s3.PresignClient
	bucket    string
	logger    ports.Logger
	metrics   ports.Metrics
}

// New creates an S3-backed storage client
func New(cfg *config.StorageConfig, logger ports.Logger, metrics ports.Metrics) (*Storage, error) {
	awsCfg, err := buildAWSConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // MinIO/LocalStack
		}
	})

	logger.Info("S3 storage initialized", "bucket", cfg.Bucket, "region", cfg.Region)

	return &Storage{
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// PresignDownload returns a time-limited GET URL for the given object key
func (s *Storage) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordHistogram("storage.s3.presign.duration_ms",
			float64(time.Since(start).Milliseconds()), nil)
	}()

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		s.metrics.IncrementCounter("storage.s3.presign.errors", nil)
		s.logger.Error("Failed to presign download", "key", key, "error", err)
		return "", fmt.Errorf("failed to presign download: %w", err)
	}

	s.metrics.IncrementCounter("storage.s3.presign.success", nil)
	return req.URL, nil
}

// buildAWSConfig builds the AWS configuration from the storage config
func buildAWSConfig(cfg *config.StorageConfig) (aws.Config, error) {
	var optFns []func(*awsconfig.LoadOptions) error

	if cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	}

	// Use static credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		))
	}

	return awsconfig.LoadDefaultConfig(context.Background(), optFns...)
}
