package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/retail_api/internal/config"
)

// objectPutter is the subset of the S3 client used for archiving.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Service archives uploaded import files in a bucket.
type S3Service struct {
	client objectPutter
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Service builds the S3 client from config. Static credentials are used
// when set, the default AWS chain otherwise.
func NewS3Service(ctx context.Context, cfg *config.S3Config) (*S3Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("S3 config is nil")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Service(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Service(client objectPutter, bucket, prefix string) *S3Service {
	return &S3Service{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// ArchiveImport stores an uploaded file under
// <prefix>/<company>/<yyyy>/<mm>/<uuid>-<filename> and returns the key.
func (s *S3Service) ArchiveImport(ctx context.Context, companyID, filename, contentType string, data []byte) (string, error) {
	now := s.now().UTC()
	key := path.Join(
		s.prefix,
		companyID,
		now.Format("2006"),
		now.Format("01"),
		fmt.Sprintf("%s-%s", uuid.NewString(), sanitizeFilename(filename)),
	)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"company-id":    companyID,
			"original-name": sanitizeFilename(filename),
		},
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to archive import file")
		return "", fmt.Errorf("failed to upload: %w", err)
	}

	log.Info().Str("key", key).Int("bytes", len(data)).Msg("Import file archived")
	return key, nil
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
