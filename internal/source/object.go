package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/klauspost/compress/zstd"

	domerrors "github.com/mferrari98/cont-portal/internal/errors"
)

// ObjectConfig holds the settings for an S3-compatible backend.
type ObjectConfig struct {
	Endpoint    string // optional, for R2/MinIO style deployments
	Region      string
	AccessKeyID string
	SecretKey   string
	Bucket      string
	Key         string
}

// ObjectSource reads the workbook from S3-compatible object storage.
// Keys ending in .zst are transparently decompressed.
type ObjectSource struct {
	s3     *s3.Client
	bucket string
	key    string
}

// NewObjectSource creates an object storage source.
func NewObjectSource(ctx context.Context, cfg ObjectConfig) (*ObjectSource, error) {
	if cfg.Bucket == "" || cfg.Key == "" {
		return nil, errors.New("source: object bucket and key are required")
	}

	var opts []func(*config.LoadOptions) error
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretKey,
			"",
		)))
	}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("source: load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for R2 and MinIO
		}
	})

	return &ObjectSource{
		s3:     s3Client,
		bucket: cfg.Bucket,
		key:    cfg.Key,
	}, nil
}

// Name implements Source.
func (s *ObjectSource) Name() string { return BackendObject }

// Ref implements Source.
func (s *ObjectSource) Ref() string { return s.bucket + "/" + s.key }

// Stamp returns the object ETag without downloading the body.
func (s *ObjectSource) Stamp(ctx context.Context) (string, error) {
	result, err := s.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return "", s.wrapErr(err)
	}
	return trimETag(result.ETag), nil
}

// Fetch downloads the object, decompresses it when the key has a .zst
// suffix, and validates the payload.
func (s *ObjectSource) Fetch(ctx context.Context) ([]byte, string, error) {
	result, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, "", s.wrapErr(err)
	}
	defer func() { _ = result.Body.Close() }()

	var reader io.Reader = result.Body
	if strings.HasSuffix(s.key, ".zst") {
		decoder, err := zstd.NewReader(result.Body)
		if err != nil {
			return nil, "", domerrors.NewSourceError(BackendObject, s.Ref(), 0,
				fmt.Errorf("%w: decompress zstd: %v", domerrors.ErrDirectoryMalformed, err))
		}
		defer decoder.Close()
		reader = decoder
	}

	payload, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", domerrors.NewSourceError(BackendObject, s.Ref(), 0,
			fmt.Errorf("%w: read object: %v", domerrors.ErrSourceUnavailable, err))
	}

	contentType := ""
	if result.ContentType != nil {
		contentType = *result.ContentType
	}
	if err := ValidatePayload(payload, contentType); err != nil {
		return nil, "", domerrors.NewSourceError(BackendObject, s.Ref(), 0, err)
	}

	return payload, trimETag(result.ETag), nil
}

func (s *ObjectSource) wrapErr(err error) error {
	if isNotFound(err) {
		return domerrors.NewSourceError(BackendObject, s.Ref(), http.StatusNotFound, domerrors.ErrDirectoryNotFound)
	}
	return domerrors.NewSourceError(BackendObject, s.Ref(), 0,
		fmt.Errorf("%w: %v", domerrors.ErrSourceUnavailable, err))
}

func trimETag(etag *string) string {
	if etag == nil {
		return ""
	}
	return strings.Trim(*etag, "\"")
}

// isNotFound checks the various shapes a missing-object error takes
// across S3-compatible providers.
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "404":
			return true
		}
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return false
}
