// Package s3 keeps attachments in an S3-compatible bucket (AWS, R2, MinIO).
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/itchan-dev/feed/backend/internal/service"
	"github.com/itchan-dev/feed/shared/config"
	"github.com/itchan-dev/feed/shared/domain"
	internal_errors "github.com/itchan-dev/feed/shared/errors"
	"github.com/itchan-dev/feed/shared/logger"
)

// Client is the subset of *s3.Client the storage needs.
type Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Storage struct {
	client Client
	bucket string
	prefix string
}

var _ service.AttachmentStorage = (*Storage)(nil)

var errAttachmentNotFound = internal_errors.NotFound("Attachment not found")

// NewClient builds an S3 client from static credentials. A non-empty
// endpoint switches to path-style addressing for R2/MinIO.
func NewClient(cfg config.S3, accessKeyId, secretAccessKey string) *s3.Client {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	awsCfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(accessKeyId, secretAccessKey, ""),
		Region:      region,
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
}

func New(client Client, bucket, prefix string) *Storage {
	logger.Log.Info("using s3 attachment storage", "bucket", bucket, "prefix", prefix)
	return &Storage{client: client, bucket: bucket, prefix: prefix}
}

func (s *Storage) key(ref domain.AttachmentRef) string {
	if s.prefix == "" {
		return ref
	}
	return path.Join(s.prefix, ref)
}

func (s *Storage) Save(ctx context.Context, data io.Reader, originalFilename string) (domain.AttachmentRef, error) {
	ref := service.NewAttachmentRef(originalFilename)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
		Body:   data,
	}
	if ct := mime.TypeByExtension(filepath.Ext(ref)); ct != "" {
		input.ContentType = aws.String(ct)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", ref, err)
	}
	return ref, nil
}

func (s *Storage) Open(ctx context.Context, ref domain.AttachmentRef) (io.ReadCloser, error) {
	if !service.ValidAttachmentRef(ref) {
		return nil, errAttachmentNotFound
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, errAttachmentNotFound
		}
		return nil, fmt.Errorf("failed to get object %s: %w", ref, err)
	}
	return out.Body, nil
}

// Release deletes the object. S3 DeleteObject is already idempotent; a
// NotFound from stricter gateways is treated the same way.
func (s *Storage) Release(ctx context.Context, ref domain.AttachmentRef) error {
	if !service.ValidAttachmentRef(ref) {
		return fmt.Errorf("refusing to release malformed attachment ref %q", ref)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete object %s: %w", ref, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var noKey *s3types.NoSuchKey
	var notFound *s3types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
