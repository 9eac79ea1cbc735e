package artifacts

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/aidocpro/internal/filex"
	"github.com/dmitrijs2005/aidocpro/internal/netx"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	now = time.Now
)

// S3Options configures an S3Sink. AccessKey/SecretKey may be empty, in which
// case the default AWS credential chain is used.
type S3Options struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	Prefix       string
	// LinkTTL is how long the returned download link stays valid.
	LinkTTL time.Duration
}

// S3Sink uploads artifacts through presigned PUT URLs and hands back a
// presigned GET URL.
type S3Sink struct {
	opts S3Options
	http *http.Client
}

func NewS3Sink(opts S3Options, httpClient *http.Client) *S3Sink {
	if opts.LinkTTL <= 0 {
		opts.LinkTTL = 24 * time.Hour
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &S3Sink{opts: opts, http: httpClient}
}

func (s *S3Sink) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(s.opts.Region)}
	if s.opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.opts.AccessKey, s.opts.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

// objectKey is <prefix>/<yyyy>/<mm>/<dd>/<uuid>/<name>.
func (s *S3Sink) objectKey(name string) string {
	d := now().UTC()
	parts := []string{}
	if p := strings.Trim(s.opts.Prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts,
		fmt.Sprintf("%04d", d.Year()), fmt.Sprintf("%02d", int(d.Month())), fmt.Sprintf("%02d", d.Day()),
		uuid.NewString(), name)
	return path.Join(parts...)
}

func (s *S3Sink) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyArtifact
	}
	name = filex.SafeName(name)
	if name == "" {
		return "", fmt.Errorf("invalid file name")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	key := s.objectKey(name)

	put, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}

	if err := netx.UploadToPresignedURL(ctx, s.http, put.URL, contentType, data); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}

	get, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.opts.Bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": name})),
	}, s3.WithPresignExpires(s.opts.LinkTTL))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}

	return get.URL, nil
}
