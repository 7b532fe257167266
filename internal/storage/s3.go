package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// s3Store implements Store on top of an S3 bucket.
type s3Store struct {
	client *s3.Client
	bucket string
	prefix string
	region string
	logger zerolog.Logger
}

// NewS3Store creates an S3-backed image store.
func NewS3Store(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "s3-image-store").Logger()

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 image store initialised")

	return &s3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		region: region,
		logger: logger,
	}, nil
}

// Save uploads the file to the bucket and returns its public object URL.
func (s *s3Store) Save(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	fullKey := path.Join(s.prefix, key)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(fullKey),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", fullKey).
			Msg("failed to put object")
		return "", fmt.Errorf("failed to upload image (bucket=%s, key=%s): %w", s.bucket, fullKey, err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, fullKey)

	s.logger.Debug().
		Str("key", fullKey).
		Str("url", url).
		Msg("image uploaded")

	return url, nil
}
