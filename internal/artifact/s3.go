package artifact

import (
	"bytes"
	"context"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/pkg/errors"
)

// S3Options configures an S3Store.
type S3Options struct {
	Bucket string
	Region string

	// Prefix is prepended to every object key, e.g. "scanned-omr".
	Prefix string

	// AccessKeyID and SecretAccessKey are optional; when empty the default
	// AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
}

// S3Store uploads artifacts to an S3 bucket.
type S3Store struct {
	uploader s3manageriface.UploaderAPI
	bucket   string
	prefix   string
}

// NewS3Store opens an AWS session for opts.
func NewS3Store(opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket is empty")
	}

	cfg := &aws.Config{}
	if opts.Region != "" {
		cfg.Region = aws.String(opts.Region)
	}
	if opts.AccessKeyID != "" {
		cfg.Credentials = credentials.NewStaticCredentials(opts.AccessKeyID, opts.SecretAccessKey, "")
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create aws session")
	}

	return newS3Store(s3manager.NewUploader(sess), opts.Bucket, opts.Prefix), nil
}

func newS3Store(uploader s3manageriface.UploaderAPI, bucket, prefix string) *S3Store {
	return &S3Store{uploader: uploader, bucket: bucket, prefix: prefix}
}

// Put implements Store. The returned location is the object URL.
func (s *S3Store) Put(ctx context.Context, name string, body []byte, contentType string) (string, error) {
	key := name
	if s.prefix != "" {
		key = path.Join(s.prefix, name)
	}

	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to upload s3://%s/%s", s.bucket, key)
	}
	return out.Location, nil
}
