package resultscache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Options configures an S3 or S3-compatible bucket.
type S3Options struct {
	Bucket   string
	Endpoint string // host of an S3-compatible service; empty for AWS
	Region   string
	KeyID    string
	Secret   string
}

type s3Store struct {
	client *s3.Client
	bucket string
}

// NewS3 creates an S3-backed cache. Custom endpoints use path-style
// addressing.
func NewS3(o S3Options, opts Options) (*ObjectBackend, error) {
	if o.Bucket == "" || o.Region == "" {
		return nil, fmt.Errorf("s3 results cache requires bucket and region")
	}
	s3Opts := s3.Options{Region: o.Region}
	if o.KeyID != "" {
		s3Opts.Credentials = credentials.NewStaticCredentialsProvider(o.KeyID, o.Secret, "")
	}
	if o.Endpoint != "" {
		s3Opts.BaseEndpoint = aws.String("https://" + o.Endpoint)
		s3Opts.UsePathStyle = true
	}
	return newObjectBackend(&s3Store{client: s3.New(s3Opts), bucket: o.Bucket}, opts), nil
}

func (s *s3Store) upload(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
	})
	return err
}

func (s *s3Store) download(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer out.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *s3Store) remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *s3Store) close() error { return nil }
