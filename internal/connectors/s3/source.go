// Package s3 fetches contracts from Amazon S3 or an S3-compatible store.
//
// URIs take the form s3://{bucket}/{key}. Credentials come from the
// standard AWS chain (environment, shared config, instance role).
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/normalisers"
)

// Scheme is the URI scheme served by this source.
const Scheme = "s3"

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// GetObjectAPI is the slice of the S3 client the source uses.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

// Config selects the region and an optional custom endpoint such as MinIO.
type Config struct {
	Region   string
	Endpoint string
}

// Source fetches s3:// URIs.
type Source struct {
	cfg Config

	mu     sync.Mutex
	client GetObjectAPI
}

// New creates a source that loads the AWS configuration on first use.
func New(cfg Config) *Source {
	return &Source{cfg: cfg}
}

// NewWithClient creates a source over an existing client.
func NewWithClient(client GetObjectAPI) *Source {
	return &Source{client: client}
}

// Scheme returns "s3".
func (s *Source) Scheme() string {
	return Scheme
}

// ParseURI splits s3://bucket/key.
func ParseURI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, Scheme+"://")
	if !ok {
		return "", "", fmt.Errorf("%w: s3 URI must be s3://bucket/key", domain.ErrInvalidInput)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("%w: s3 URI must be s3://bucket/key", domain.ErrInvalidInput)
	}
	return bucket, key, nil
}

// Fetch downloads the object named by uri.
func (s *Source) Fetch(ctx context.Context, uri string) (*domain.RawDocument, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	client, err := s.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapError(uri, err)
	}
	defer out.Body.Close()

	if size := aws.ToInt64(out.ContentLength); size > domain.MaxDocumentBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d",
			domain.ErrInvalidInput, uri, size, domain.MaxDocumentBytes)
	}
	content, err := io.ReadAll(io.LimitReader(out.Body, domain.MaxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}

	return &domain.RawDocument{
		URI:      uri,
		MIMEType: mimeType(key, aws.ToString(out.ContentType), content),
		Content:  content,
		Metadata: map[string]any{
			"source":   Scheme,
			"bucket":   bucket,
			"key":      key,
			"filename": path.Base(key),
			"etag":     aws.ToString(out.ETag),
		},
	}, nil
}

// mimeType decides by the key's extension when it has one. Extensionless
// keys use a specific Content-Type, then sniffing.
func mimeType(key, contentType string, content []byte) string {
	if path.Ext(key) != "" {
		return normalisers.DetectMIMEType(key, content)
	}
	switch ct := strings.TrimSpace(contentType); ct {
	case "", "binary/octet-stream", "application/octet-stream":
		return normalisers.DetectMIMEType(key, content)
	default:
		return ct
	}
}

func (s *Source) ensureClient(ctx context.Context) (GetObjectAPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	var loadOpts []func(*config.LoadOptions) error
	if s.cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(s.cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := s.cfg.Endpoint
	s.client = awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return s.client, nil
}

func wrapError(uri string, err error) error {
	var noKey *types.NoSuchKey
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noKey) || errors.As(err, &noBucket) {
		return fmt.Errorf("get %s: %w: %v", uri, domain.ErrNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound":
			return fmt.Errorf("get %s: %w: %v", uri, domain.ErrNotFound, err)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return fmt.Errorf("get %s: %w: %v", uri, domain.ErrSourceAuthRequired, err)
		case "SlowDown", "Throttling":
			return fmt.Errorf("get %s: %w: %v", uri, domain.ErrRateLimited, err)
		}
	}
	return fmt.Errorf("get %s: %w", uri, err)
}
