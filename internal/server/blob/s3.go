package blob

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/notehub/internal/common"
	sc "github.com/dmitrijs2005/notehub/internal/server/config"
)

// objectAPI is the slice of *s3.Client the store needs.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}

	now = time.Now
)

type S3Store struct {
	client    objectAPI
	bucket    string
	publicURL string
}

// NewS3Store builds a path-style S3 client against the configured endpoint
// (MinIO in development).
func NewS3Store(ctx context.Context, c *sc.Config) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,
			c.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: c.S3Bucket, publicURL: c.PublicBaseURL()}, nil
}

// Put uploads data under a fresh key derived from name.
func (s *S3Store) Put(ctx context.Context, name, contentType string, data []byte) (*Object, error) {
	key := NewKey(name, now())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: put object %s: %w", common.ErrorUpstreamStorage, key, err)
	}

	u, err := url.JoinPath(s.publicURL, s.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("build object url: %w", err)
	}
	return &Object{ID: key, URL: u}, nil
}

func (s *S3Store) Remove(ctx context.Context, id string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("%w: delete object %s: %w", common.ErrorUpstreamStorage, id, err)
	}
	return nil
}

// Open starts streaming the object. The caller must close Body.
func (s *S3Store) Open(ctx context.Context, id string) (*Reader, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get object %s: %w", common.ErrorUpstreamStorage, id, err)
	}

	r := &Reader{Body: out.Body, Size: -1, ContentType: aws.ToString(out.ContentType)}
	if out.ContentLength != nil {
		r.Size = *out.ContentLength
	}
	return r, nil
}
