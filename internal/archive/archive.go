// Package archive uploads saved conversation transcripts to S3-compatible
// object storage.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "transcripts/"

// ErrNoBucket is returned when the archive has no bucket configured.
var ErrNoBucket = errors.New("archive bucket is not configured")

// Client stores transcripts under a prefix of one bucket.
type Client struct {
	s3     *s3.Client
	bucket string
	prefix string
}

// NewClient creates an archive client. An empty endpoint uses AWS itself;
// any other endpoint is addressed path-style, as most S3-compatible stores expect.
func NewClient(endpoint, region, accessKey, secretKey, bucket, prefix string) (*Client, error) {
	if bucket == "" {
		return nil, ErrNoBucket
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKey != "" || secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return newClient(client, bucket, prefix), nil
}

func newClient(c *s3.Client, bucket, prefix string) *Client {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Client{s3: c, bucket: bucket, prefix: prefix}
}

// Bucket returns the configured bucket.
func (c *Client) Bucket() string {
	return c.bucket
}

// EnsureBucket creates the bucket. A bucket we already own is not an error.
func (c *Client) EnsureBucket(ctx context.Context) error {
	_, err := c.s3.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err != nil {
		if isBucketAlreadyOwnedByYou(err) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", c.bucket, err)
	}
	return nil
}

// KeyFor returns the object key for a transcript exported at t.
func (c *Client) KeyFor(t time.Time) string {
	return c.prefix + t.UTC().Format("20060102T150405.000Z") + ".json"
}

// PutTranscript uploads data under name (a bare file name is placed under the
// prefix) and returns the object key.
func (c *Client) PutTranscript(ctx context.Context, name string, data []byte) (string, error) {
	key := c.prefix + path.Base(name)
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put transcript %s in bucket %s: %w", key, c.bucket, err)
	}
	return key, nil
}

// ListTranscripts returns the keys under the prefix, sorted.
func (c *Client) ListTranscripts(ctx context.Context) ([]string, error) {
	result, err := c.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(c.prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts in bucket %s: %w", c.bucket, err)
	}

	var keys []string
	for _, obj := range result.Contents {
		if obj.Key != nil {
			keys = append(keys, *obj.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// GetTranscript downloads the transcript stored under key.
func (c *Client) GetTranscript(ctx context.Context, key string) ([]byte, error) {
	result, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript %s from bucket %s: %w", key, c.bucket, err)
	}
	defer func() {
		_ = result.Body.Close()
	}()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(result.Body); err != nil {
		return nil, fmt.Errorf("failed to read transcript body: %w", err)
	}
	return buf.Bytes(), nil
}

// isBucketAlreadyOwnedByYou checks if the error indicates the bucket exists and is owned by us.
func isBucketAlreadyOwnedByYou(err error) bool {
	if err == nil {
		return false
	}

	var baoby *types.BucketAlreadyOwnedByYou
	if errors.As(err, &baoby) {
		return true
	}

	// S3-compatible services do not always return the typed error.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "BucketAlreadyOwnedByYou"
	}
	return false
}
