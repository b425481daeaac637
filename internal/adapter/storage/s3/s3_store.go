package s3store

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Compressed bucket files are gzip streams regardless of the .log.gz name.
const contentType = "application/gzip"

// Store implements domain.ObjectStore on top of S3-compatible object
// storage. Concurrent uploads of different files are independent; the SDK's
// own request semantics are the only coordination needed.
type Store struct {
	uploader *manager.Uploader
	bucket   string
}

// Options configures the S3 client beyond the default credential chain.
type Options struct {
	Region string
	// Endpoint overrides the AWS endpoint for MinIO/Ceph style stores.
	Endpoint string
	// PathStyle switches to path-style addressing, which most self-hosted
	// stores require.
	PathStyle bool
}

// New builds a Store for the named bucket using the default AWS credential
// chain.
func New(ctx context.Context, bucketName string, opts Options) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})

	return &Store{
		uploader: manager.NewUploader(client),
		bucket:   bucketName,
	}, nil
}

// Upload streams the file at sourcePath to the given object key.
func (s *Store) Upload(ctx context.Context, key string, sourcePath string) error {
	f, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open %s for upload: %w", sourcePath, err)
	}
	defer f.Close()

	if _, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	}); err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", s.bucket, key, err)
	}

	return nil
}
