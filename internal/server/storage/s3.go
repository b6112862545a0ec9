// Package storage holds the blob-store collaborator: photo bytes go to an
// S3-compatible backend and the rest of the system only ever sees the
// returned reference URL.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Storage uploads photos to a single bucket. Works against AWS or any
// S3-compatible endpoint (MinIO) via the base endpoint override.
type S3Storage struct {
	client       *s3.Client
	bucket       string
	baseEndpoint string
}

// Options carries the credentials and addressing settings for the backend.
type Options struct {
	RootUser     string
	RootPassword string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// NewS3Storage builds a client with static credentials and path-style
// addressing against the configured endpoint.
func NewS3Storage(ctx context.Context, opts Options) (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.RootUser,
			opts.RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:       client,
		bucket:       opts.Bucket,
		baseEndpoint: strings.TrimSuffix(opts.BaseEndpoint, "/"),
	}, nil
}

// randomStorageKey partitions objects by upload date so buckets stay
// browsable.
func randomStorageKey(name string) string {
	d := time.Now()
	return fmt.Sprintf("photos/%d/%02d/%02d/%s-%s", d.Year(), d.Month(), d.Day(), uuid.New(), sanitizeName(name))
}

func sanitizeName(name string) string {
	return url.PathEscape(strings.ReplaceAll(name, "/", "_"))
}

// Upload puts the photo bytes under a fresh key and returns the stable
// reference URL stored in the capsule's photo_urls array.
func (s *S3Storage) Upload(ctx context.Context, name string, body io.Reader) (string, error) {
	key := randomStorageKey(name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s/%s", s.baseEndpoint, s.bucket, key), nil
}

// PresignGet returns a temporary GET URL for a stored object, for
// deployments where the bucket is not publicly readable.
func (s *S3Storage) PresignGet(ctx context.Context, key string) (string, error) {
	presignClient := s3.NewPresignClient(s.client)

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
