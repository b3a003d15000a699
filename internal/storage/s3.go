package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/templui/sfss/internal/config"
)

type Operation string

const (
	OpPut Operation = "put"
	OpGet Operation = "get"
)

// S3 caps presigned URL lifetime at 7 days
const maxPresignExpiry = 7 * 24 * time.Hour

var ErrInvalidPresign = errors.New("invalid presign request")

// Storage defines the object storage operations the share service needs
type Storage interface {
	// PresignURL returns a time-limited URL for a single operation on key
	PresignURL(ctx context.Context, key string, op Operation, ttl time.Duration) (string, error)

	// PresignUpload returns a PUT URL that also pins content type and length
	PresignUpload(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, error)

	// Delete removes the object at key
	Delete(ctx context.Context, key string) error
}

// S3Storage implements Storage for S3-compatible storage
// Works with AWS S3, MinIO, DigitalOcean Spaces, Cloudflare R2, etc.
type S3Storage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	timeout       time.Duration
}

// S3Config holds configuration for S3 storage
type S3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string        // Optional: for S3-compatible services
	Timeout   time.Duration // Per-call timeout for S3 requests, default 10s
}

// New creates an S3-compatible storage instance from app config.
// With S3EnsureBucket set, the bucket is created if it does not exist yet.
func New(c *cfg.Config) (*S3Storage, error) {
	slog.Info("initializing S3 storage",
		"bucket", c.S3Bucket,
		"region", c.S3Region,
		"endpoint", c.S3Endpoint,
	)

	storage, err := NewS3Storage(S3Config{
		Region:    c.S3Region,
		Bucket:    c.S3Bucket,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		Endpoint:  c.S3Endpoint,
		Timeout:   c.S3Timeout,
	})
	if err != nil {
		return nil, err
	}

	if !c.S3EnsureBucket {
		return storage, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), storage.timeout)
	defer cancel()

	err = storage.ensureBucket(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return storage, nil
}

// NewS3Storage creates a new S3 storage instance without touching the network
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	ctx := context.Background()

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	// Add static credentials if provided
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with optional custom endpoint
	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO and some S3-compatible services
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &S3Storage{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		timeout:       timeout,
	}, nil
}

// ensureBucket checks if bucket exists, creates it if not
func (s *S3Storage) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %q does not exist and could not be created: %w", s.bucket, err)
	}

	slog.Info("created S3 bucket", "bucket", s.bucket)
	return nil
}

func validTTL(ttl time.Duration) error {
	if ttl <= 0 || ttl > maxPresignExpiry {
		return fmt.Errorf("%w: ttl %s outside (0, %s]", ErrInvalidPresign, ttl, maxPresignExpiry)
	}
	return nil
}

// PresignURL generates a presigned URL for a GET or PUT on key
func (s *S3Storage) PresignURL(ctx context.Context, key string, op Operation, ttl time.Duration) (string, error) {
	switch op {
	case OpGet:
		return s.presignGet(ctx, key, ttl)
	case OpPut:
		return s.PresignUpload(ctx, key, "", 0, ttl)
	default:
		return "", fmt.Errorf("%w: unknown operation %q", ErrInvalidPresign, op)
	}
}

func (s *S3Storage) presignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := validTTL(ttl); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	presignedReq, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign download URL: %w", err)
	}

	return presignedReq.URL, nil
}

// PresignUpload generates a presigned PUT URL. Non-empty contentType and positive size are
// part of the signature, so the client must upload exactly that.
func (s *S3Storage) PresignUpload(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, error) {
	if err := validTTL(ttl); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	presignedReq, err := s.presignClient.PresignPutObject(ctx, input, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload URL: %w", err)
	}

	return presignedReq.URL, nil
}

// Delete removes an object from S3
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}
