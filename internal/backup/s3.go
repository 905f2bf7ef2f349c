package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"snaplog-go/internal/core"
)

// S3Store keeps backup blobs in an S3 bucket under
// <prefix>/<snapshotID>/<project-relative path>.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

var _ core.BackupStore = (*S3Store)(nil)

// S3Options configures an S3Store. AccessKeyID/SecretAccessKey are optional;
// when empty the SDK's default credential chain applies.
type S3Options struct {
	Bucket          string
	Prefix          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Store creates an S3-backed backup store.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 backup store requires a bucket")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   opts.Bucket,
		prefix:   opts.Prefix,
	}, nil
}

func (s *S3Store) key(snapshotID string, fp core.FilePath) string {
	return path.Join(s.prefix, snapshotID, fp.Rel())
}

// PutBackup uploads the pre-mutation content for one change. S3 PUTs are
// last-writer-wins, so retried writes converge.
func (s *S3Store) PutBackup(snapshotID string, fp core.FilePath, content []byte) error {
	_, err := s.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(snapshotID, fp)),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return fmt.Errorf("uploading backup blob: %w", err)
	}
	return nil
}

// GetBackup downloads the pre-mutation content for one change.
func (s *S3Store) GetBackup(snapshotID string, fp core.FilePath) ([]byte, error) {
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(snapshotID, fp)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, &core.NotFoundError{Resource: "backup", Key: snapshotID + ":" + fp.String()}
		}
		return nil, fmt.Errorf("downloading backup blob: %w", err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading backup blob: %w", err)
	}
	return content, nil
}
