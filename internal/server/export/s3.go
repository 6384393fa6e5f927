package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/sketchboard/internal/common"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// S3Config locates the bucket exports are written to. An empty Bucket
// disables uploads.
type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	RootUser     string
	RootPassword string
}

type Uploader struct {
	cfg   S3Config
	now   func() time.Time
	newID func() string
}

func NewUploader(cfg S3Config) *Uploader {
	return &Uploader{cfg: cfg, now: time.Now, newID: uuid.NewString}
}

// Enabled reports whether a bucket is configured.
func (u *Uploader) Enabled() bool {
	return u.cfg.Bucket != ""
}

// StorageKey is the object key for an export made at t.
func StorageKey(t time.Time, id string) string {
	return fmt.Sprintf("boards/%04d/%02d/%02d/%s.pdf", t.Year(), t.Month(), t.Day(), id)
}

func (u *Uploader) client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(u.cfg.Region)}
	if u.cfg.RootUser != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.cfg.RootUser,
			u.cfg.RootPassword,
			"",
		)))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if u.cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(u.cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Upload stores a rendered PDF and returns its key.
func (u *Uploader) Upload(ctx context.Context, body []byte) (string, error) {
	if !u.Enabled() {
		return "", common.ErrExportDisabled
	}

	c, err := u.client(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 client: %w", err)
	}

	bucket := u.cfg.Bucket
	key := StorageKey(u.now().UTC(), u.newID())

	_, err = putObject(c, ctx, &s3.PutObjectInput{
		Bucket:        &bucket,
		Key:           &key,
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/pdf"),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return key, nil
}
