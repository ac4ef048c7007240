package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"campus-connect-backend/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds settings for S3-compatible storage (AWS, Wasabi, MinIO).
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	// Endpoint overrides the AWS endpoint, e.g. "https://s3.ap-southeast-1.wasabisys.com".
	Endpoint string
}

// S3API is the subset of *s3.Client the resume store needs.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// NewS3Client creates an S3 client. A custom endpoint switches to
// path-style addressing, which Wasabi and MinIO require.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if cfg.Endpoint == "" {
		return s3.NewFromConfig(awsCfg), nil
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	}), nil
}

// S3ResumeStorage keeps resumes as objects under the "resumes/" prefix.
type S3ResumeStorage struct {
	client S3API
	bucket string
	now    func() time.Time
}

var _ domain.ResumeStorage = (*S3ResumeStorage)(nil)

func NewS3ResumeStorage(client S3API, bucket string) *S3ResumeStorage {
	return &S3ResumeStorage{client: client, bucket: bucket, now: time.Now}
}

func (s *S3ResumeStorage) Store(ctx context.Context, data []byte, originalName string) (string, error) {
	key := objectName(s.now(), originalName)

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", errors.Join(domain.ErrStorage, fmt.Errorf("failed to upload %s: %w", key, err))
	}
	return key, nil
}

// Delete is idempotent: S3 reports success for keys that do not exist.
func (s *S3ResumeStorage) Delete(ctx context.Context, ref string) error {
	if !validRef(ref) {
		return fmt.Errorf("invalid resume reference %q: %w", ref, domain.ErrStorage)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return errors.Join(domain.ErrStorage, fmt.Errorf("failed to delete %s: %w", ref, err))
	}
	return nil
}
