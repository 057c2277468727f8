package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrymomot/mergeflow/pkg/id"
	"github.com/dmitrymomot/mergeflow/pkg/slug"
)

// maxNameLength bounds the slug part of generated keys.
const maxNameLength = 80

// S3Storage stores generated documents, PDFs and templates in one bucket.
type S3Storage struct {
	client *s3.Client
	cfg    Config
}

// New creates a new S3Storage with the given configuration.
func New(cfg Config) (*S3Storage, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)
		},
	}

	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	return &S3Storage{
		client: s3.New(s3.Options{}, opts...),
		cfg:    cfg,
	}, nil
}

// Put uploads data from a reader to S3.
func (s *S3Storage) Put(ctx context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error) {
	o := &putOptions{}
	for _, opt := range opts {
		opt(o)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to read input: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if size <= 0 {
		size = int64(len(data))
	}

	contentType := o.contentType
	if contentType == "" {
		contentType = DetectMIME(data)
	}

	key := o.key
	if key == "" {
		key = buildKey(o.prefix, o.name, contentType)
	}

	name := o.name
	if name == "" {
		name = nameFromKey(key)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, s3Error("put", key, err, ErrUploadFailed)
	}

	return &FileInfo{
		Key:         key,
		Name:        name,
		Size:        size,
		ContentType: contentType,
	}, nil
}

// Get retrieves a file from S3.
func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s3Error("get", key, err, ErrNotFound)
	}
	return output.Body, nil
}

// Delete removes a file from S3.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return s3Error("delete", key, err, ErrDeleteFailed)
	}
	return nil
}

// List returns every object below prefix, following continuation tokens.
func (s *S3Storage) List(ctx context.Context, prefix string) ([]FileInfo, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
		Prefix: aws.String(normalizePrefix(prefix)),
	})

	var files []FileInfo
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, s3Error("list", prefix, err, ErrListFailed)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue
			}
			files = append(files, FileInfo{
				Key:      key,
				Name:     nameFromKey(key),
				Size:     aws.ToInt64(obj.Size),
				Modified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return files, nil
}

// Move copies src to dst within the bucket and removes src.
func (s *S3Storage) Move(ctx context.Context, src, dst string) error {
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.cfg.Bucket),
		Key:        aws.String(dst),
		CopySource: aws.String(s.cfg.Bucket + "/" + src),
	})
	if err != nil {
		return s3Error("copy", src, err, ErrMoveFailed)
	}
	return s.Delete(ctx, src)
}

// Trash moves key below the trash prefix and returns the new key.
func (s *S3Storage) Trash(ctx context.Context, key string) (string, error) {
	dst := path.Join(s.cfg.TrashPrefix, key)
	if err := s.Move(ctx, key, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// buildKey constructs a storage key from prefix, display name and content type.
// Format: {prefix}/{slug(name)}-{ulid}{ext}
func buildKey(prefix, name, contentType string) string {
	ext := ExtFromMIME(contentType)
	if ext == "" {
		ext = ".bin"
	}

	filename := id.NewULID() + ext
	if s := slug.Make(name, slug.Lowercase(false), slug.MaxLength(maxNameLength)); s != "" {
		filename = s + "-" + filename
	}

	if p := strings.Trim(prefix, "/"); p != "" {
		return p + "/" + filename
	}
	return filename
}

// normalizePrefix makes a folder-like prefix end with a slash.
func normalizePrefix(prefix string) string {
	prefix = strings.TrimLeft(prefix, "/")
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}
