// Package storage writes image variants to an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"

	"calcio-stop/internal/config"
	"calcio-stop/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ImageContentType is the content type of every stored variant.
const ImageContentType = "image/webp"

// ObjectAPI is the subset of the S3 client used by Bucket.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Bucket stores objects and hands back their public URLs.
type Bucket struct {
	client    ObjectAPI
	bucket    string
	publicURL func(bucket, key string) string
	logger    zerolog.Logger
}

// NewS3Bucket creates a Bucket for the storage S3 endpoint using static
// credentials and path-style addressing.
func NewS3Bucket(ctx context.Context, cfg config.StorageConfig, backend config.BackendConfig, logger zerolog.Logger) (*Bucket, error) {
	logger = logger.With().Str("component", "s3-bucket").Logger()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	logger.Info().
		Str("bucket", cfg.Bucket).
		Str("region", cfg.Region).
		Str("endpoint", cfg.Endpoint).
		Msg("S3 bucket initialised")

	return NewBucket(client, cfg.Bucket, backend.PublicURL, logger), nil
}

// NewBucket wraps an existing client.
func NewBucket(client ObjectAPI, bucket string, publicURL func(bucket, key string) string, logger zerolog.Logger) *Bucket {
	return &Bucket{
		client:    client,
		bucket:    bucket,
		publicURL: publicURL,
		logger:    logger,
	}
}

// ImageKey is the object key of an image variant.
func ImageKey(entityType model.EntityType, entityID uuid.UUID, variant model.ImageVariant) string {
	return fmt.Sprintf("%s/%s/%s.webp", entityType, entityID, variant)
}

// Put uploads body under key, replacing any existing object, and returns
// the public URL.
func (b *Bucket) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:       aws.String(b.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=3600"),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		b.logger.Error().
			Err(err).
			Str("bucket", b.bucket).
			Str("key", key).
			Msg("failed to put object to S3")
		return "", fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", b.bucket, key, err)
	}

	b.logger.Debug().Str("key", key).Int64("size", size).Msg("object stored")
	return b.publicURL(b.bucket, key), nil
}
