package asset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/taskdesk/internal/client/models"
)

// PutObjectAPI is the subset of the S3 client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Settings struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3Uploader writes attachments to an S3-compatible bucket under
// tasks/YYYY/M/D/<uuid>-<name>.
type S3Uploader struct {
	api           PutObjectAPI
	bucket        string
	publicBaseURL string
	now           func() time.Time
	newID         func() string
}

// NewS3Client builds an S3 client from settings. A custom endpoint switches
// to path-style addressing, which MinIO and most compatible stores expect.
func NewS3Client(ctx context.Context, s S3Settings) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if s.Region != "" {
		opts = append(opts, awsconfig.WithRegion(s.Region))
	}
	if s.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKey, s.SecretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func NewS3Uploader(api PutObjectAPI, bucket, publicBaseURL string) (*S3Uploader, error) {
	if bucket == "" || publicBaseURL == "" {
		return nil, fmt.Errorf("%w: bucket and public base url are required", ErrMissingSetting)
	}
	return &S3Uploader{
		api:           api,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
		newID:         uuid.NewString,
	}, nil
}

func (u *S3Uploader) objectKey(name string) string {
	t := u.now().UTC()
	return path.Join("tasks",
		fmt.Sprint(t.Year()), fmt.Sprint(int(t.Month())), fmt.Sprint(t.Day()),
		u.newID()+"-"+filepath.Base(name))
}

func (u *S3Uploader) Upload(ctx context.Context, f models.PendingFile) (string, error) {
	r, err := f.Open()
	if err != nil {
		return "", err
	}
	defer r.Close()

	// The SDK signs the payload, so it needs a seekable body.
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}

	key := u.objectKey(f.Name)
	in := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if ct := mime.TypeByExtension(filepath.Ext(f.Name)); ct != "" {
		in.ContentType = aws.String(ct)
	}

	if _, err := u.api.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return u.publicBaseURL + "/" + (&url.URL{Path: key}).EscapedPath(), nil
}
