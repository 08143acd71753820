package source

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/olegkotsar/yomins-upload/config"
	"github.com/olegkotsar/yomins-upload/model"
	"golang.org/x/time/rate"

	s3config "github.com/aws/aws-sdk-go-v2/config"
)

var _ SourceProvider = (*S3Source)(nil)

// S3API is the subset of the S3 client used here, so tests can swap it out
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source enumerates objects of an S3-compatible bucket
type S3Source struct {
	client  S3API
	config  *config.S3Config
	common  *config.CommonSourceConfig
	limiter *rate.Limiter
}

func NewS3Source(cfg *config.S3Config, common *config.CommonSourceConfig) (*S3Source, error) {
	ctx := context.TODO()

	// For S3-compatible storage, region is often just a placeholder
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	s3cfg, err := s3config.LoadDefaultConfig(
		ctx,
		s3config.WithRegion(region),
		s3config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		s3config.WithClientLogMode(0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %v", err)
	}

	client := s3.NewFromConfig(s3cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return newS3SourceWithClient(client, cfg, common), nil
}

func newS3SourceWithClient(client S3API, cfg *config.S3Config, common *config.CommonSourceConfig) *S3Source {
	var limiter *rate.Limiter
	if common.MaxRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(common.MaxRPS), common.MaxRPS) // burst = MaxRPS
	}
	return &S3Source{
		client:  client,
		config:  cfg,
		common:  common,
		limiter: limiter,
	}
}

// keyPrefix turns the configured root into an S3 key prefix ("" or "dir/")
func keyPrefix(root string) string {
	root = strings.Trim(root, "/")
	if root == "" || root == "." {
		return ""
	}
	return root + "/"
}

// Scan lists every object under root. Directory marker keys are skipped.
func (c *S3Source) Scan(ctx context.Context, root string) ([]model.FileEntry, error) {
	prefix := keyPrefix(root)
	location := fmt.Sprintf("s3://%s/%s", c.config.Bucket, prefix)

	entries := []model.FileEntry{}
	var continuationToken *string

	for {
		resp, err := c.listPage(ctx, prefix, continuationToken)
		if err != nil {
			return nil, &FilesystemError{Op: "scan", Path: location, Err: err}
		}

		for _, obj := range resp.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			entries = append(entries, model.NewFileEntry(path.Base(key), key, strings.TrimPrefix(key, prefix), aws.ToInt64(obj.Size)))
		}

		if !aws.ToBool(resp.IsTruncated) {
			break
		}
		continuationToken = resp.NextContinuationToken
	}

	return entries, nil
}

func (c *S3Source) listPage(ctx context.Context, prefix string, token *string) (*s3.ListObjectsV2Output, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	return c.client.ListObjectsV2(reqCtx, &s3.ListObjectsV2Input{
		Bucket:            aws.String(c.config.Bucket),
		Prefix:            aws.String(prefix),
		ContinuationToken: token,
	})
}

// Open downloads the object behind entry and returns its body
func (c *S3Source) Open(ctx context.Context, entry model.FileEntry) (io.ReadCloser, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	// No timeout here: the body is read for as long as the transfer takes
	reqCtx, cancel := context.WithCancel(ctx)

	result, err := c.client.GetObject(reqCtx, &s3.GetObjectInput{
		Bucket: aws.String(c.config.Bucket),
		Key:    aws.String(entry.FullPath),
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to get object %s: %w", entry.FullPath, err)
	}

	return &contextAwareReader{
		ReadCloser: result.Body,
		cancel:     cancel,
	}, nil
}

func (c *S3Source) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}
	return nil
}

func (c *S3Source) timeout() time.Duration {
	if c.common.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.common.TimeoutSeconds) * time.Second
}

// contextAwareReader wraps an io.ReadCloser and cancels context on close
type contextAwareReader struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *contextAwareReader) Close() error {
	defer r.cancel()
	return r.ReadCloser.Close()
}
