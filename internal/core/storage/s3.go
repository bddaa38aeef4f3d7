// Package storage keeps uploaded images in an S3-compatible bucket
// (AWS S3, Cloudflare R2, MinIO).
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/xid"

	"oneps/internal/core/config"
	"oneps/internal/domain"
)

// ObjectAPI 是 S3Store 用到的 s3.Client 子集，测试里替换
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Store struct {
	api       ObjectAPI
	bucket    string
	folder    string
	publicURL string // 含一个 %s，填对象 key
}

var _ domain.ImageStore = (*S3Store)(nil)

func NewS3Store(api ObjectAPI, bucket, folder, publicURL string) *S3Store {
	return &S3Store{api: api, bucket: bucket, folder: strings.Trim(folder, "/"), publicURL: publicURL}
}

// NewS3Client 静态凭证；Endpoint 非空时覆盖（R2 / MinIO）
func NewS3Client(ctx context.Context, c config.Storage) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.AccessKeySecret, "")),
		awsconfig.WithRegion(c.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (s *S3Store) key() string {
	return path.Join(s.folder, "imageFile-"+xid.New().String())
}

func (s *S3Store) URL(key string) string {
	if s.publicURL == "" {
		return key
	}
	return fmt.Sprintf(s.publicURL, key)
}

func (s *S3Store) Put(ctx context.Context, contentType string, body io.Reader, size int64) (domain.StoredImage, error) {
	key := s.key()
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return domain.StoredImage{}, fmt.Errorf("put object %s: %w", key, err)
	}
	return domain.StoredImage{URL: s.URL(key), PublicID: key}, nil
}

func (s *S3Store) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", publicID, err)
	}
	return nil
}
