// Package storage keeps uploaded images in object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"shopfront/internal/config"
	"shopfront/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store saves objects and returns their public URL.
type Store interface {
	// Put uploads body under a generated key derived from name and returns its URL.
	Put(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	// Delete removes the object behind url. URLs this store did not issue are ignored.
	Delete(ctx context.Context, url string) error
}

// ErrDisabled is returned by Put when no object storage is configured.
var ErrDisabled = model.NewDomainError(http.StatusServiceUnavailable, model.ErrCodeUnavailable,
	"Image storage is not configured")

// ObjectAPI is the subset of *s3.Client the store needs.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// NewS3Client builds an S3 client from the default AWS credential chain.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

type s3Store struct {
	client  ObjectAPI
	bucket  string
	prefix  string
	baseURL string
	logger  zerolog.Logger
}

// NewS3Store creates a Store backed by an S3 bucket.
func NewS3Store(client ObjectAPI, cfg config.S3Config, logger zerolog.Logger) Store {
	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &s3Store{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  cfg.ImagePrefix,
		baseURL: baseURL,
		logger:  logger.With().Str("component", "s3-store").Logger(),
	}
}

func (s *s3Store) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	key := s.prefix + uuid.NewString() + strings.ToLower(path.Ext(name))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to upload object")
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}

	s.logger.Debug().Str("key", key).Msg("object uploaded")
	return s.baseURL + "/" + key, nil
}

func (s *s3Store) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || key == "" {
		s.logger.Debug().Str("url", url).Msg("skipping foreign object url")
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to delete object")
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

type disabledStore struct{}

// NewDisabledStore returns a Store that rejects uploads and ignores deletes.
func NewDisabledStore() Store {
	return disabledStore{}
}

func (disabledStore) Put(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrDisabled
}

func (disabledStore) Delete(context.Context, string) error {
	return nil
}
