// Package uploads stores quiz photos in S3.
package uploads

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// PhotoStore persists an uploaded photo and returns its object key
type PhotoStore interface {
	PutPhoto(ctx context.Context, sessionID, extension, contentType string, body io.Reader, size int64) (string, error)
}

// ObjectPutter is the subset of the S3 client used for uploads
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds S3 configuration
type Config struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	Bucket             string
}

// S3Store uploads photos to a bucket under photos/<session>/
type S3Store struct {
	client ObjectPutter
	bucket string
	now    func() time.Time
	newID  func() string
}

var _ PhotoStore = (*S3Store)(nil)

// NewS3Store creates an S3 photo store. Static credentials are used when
// given, otherwise the default AWS credential chain.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3StoreWithClient(s3.NewFromConfig(awsCfg), cfg.Bucket), nil
}

// NewS3StoreWithClient creates a photo store over an existing client
func NewS3StoreWithClient(client ObjectPutter, bucket string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// PutPhoto uploads body and returns the object key
func (s *S3Store) PutPhoto(ctx context.Context, sessionID, extension, contentType string, body io.Reader, size int64) (string, error) {
	if sessionID == "" {
		sessionID = "anonymous"
	}
	key := path.Join("photos", sessionID, s.now().UTC().Format("20060102")+"-"+s.newID()+extension)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 body,
		ContentLength:        aws.Int64(size),
		ContentType:          aws.String(contentType),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
		Metadata:             map[string]string{"session-id": sessionID},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return key, nil
}
