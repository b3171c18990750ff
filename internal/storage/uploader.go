package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/config"
	apperrors "github.com/tsai-yu-xuan/vuetify-shop-back/pkg/util"
)

// Uploader stores an uploaded image and returns the path clients use to fetch it.
type Uploader interface {
	Save(ctx context.Context, file *multipart.FileHeader) (string, error)
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// New picks the uploader named by cfg.Driver.
func New(ctx context.Context, cfg config.UploadConfig, logger *zap.Logger) (Uploader, error) {
	switch cfg.Driver {
	case config.UploadDriverS3:
		return NewS3Uploader(ctx, cfg, logger)
	default:
		return NewLocalUploader(cfg)
	}
}

type openedImage struct {
	file        multipart.File
	contentType string
	ext         string
}

// openImage enforces the size limit and sniffs the content type from the
// leading bytes instead of trusting the client header.
func openImage(header *multipart.FileHeader, maxBytes int64) (*openedImage, error) {
	if header == nil {
		return nil, apperrors.NewValidationError("image is required", nil)
	}
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, apperrors.NewValidationError("image is too large", map[string]any{"max_bytes": maxBytes})
	}
	file, err := header.Open()
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("open upload: %w", err))
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		file.Close()
		return nil, apperrors.NewInternalError(fmt.Errorf("read upload: %w", err))
	}
	contentType := http.DetectContentType(sniff[:n])
	ext, ok := imageExtensions[contentType]
	if !ok {
		file.Close()
		return nil, apperrors.NewValidationError("image must be jpeg, png, gif or webp", map[string]any{"content_type": contentType})
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, apperrors.NewInternalError(fmt.Errorf("rewind upload: %w", err))
	}
	return &openedImage{file: file, contentType: contentType, ext: ext}, nil
}

// LocalUploader writes images under a directory served as static files.
type LocalUploader struct {
	dir      string
	prefix   string
	maxBytes int64
}

func NewLocalUploader(cfg config.UploadConfig) (*LocalUploader, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalUploader{
		dir:      cfg.Dir,
		prefix:   strings.TrimRight(cfg.PublicPrefix, "/"),
		maxBytes: cfg.MaxBytes,
	}, nil
}

func (u *LocalUploader) Save(_ context.Context, header *multipart.FileHeader) (string, error) {
	img, err := openImage(header, u.maxBytes)
	if err != nil {
		return "", err
	}
	defer img.file.Close()

	name := uuid.NewString() + img.ext
	out, err := os.Create(filepath.Join(u.dir, name))
	if err != nil {
		return "", apperrors.NewInternalError(fmt.Errorf("create image: %w", err))
	}
	defer out.Close()
	if _, err := io.Copy(out, img.file); err != nil {
		return "", apperrors.NewInternalError(fmt.Errorf("write image: %w", err))
	}
	return u.prefix + "/" + name, nil
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader puts images into an S3 compatible bucket.
type S3Uploader struct {
	client    objectPutter
	bucket    string
	publicURL string
	maxBytes  int64
	logger    *zap.Logger
}

func NewS3Uploader(ctx context.Context, cfg config.UploadConfig, logger *zap.Logger) (*S3Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.S3PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}
	return newS3Uploader(client, cfg.S3Bucket, publicURL, cfg.MaxBytes, logger), nil
}

func newS3Uploader(client objectPutter, bucket, publicURL string, maxBytes int64, logger *zap.Logger) *S3Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3Uploader{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

func (u *S3Uploader) Save(ctx context.Context, header *multipart.FileHeader) (string, error) {
	img, err := openImage(header, u.maxBytes)
	if err != nil {
		return "", err
	}
	defer img.file.Close()

	key := path.Join("images", uuid.NewString()+img.ext)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          img.file,
		ContentType:   aws.String(img.contentType),
		ContentLength: aws.Int64(header.Size),
	})
	if err != nil {
		u.logger.Error("s3 put failed", zap.String("bucket", u.bucket), zap.String("key", key), zap.Error(err))
		return "", apperrors.NewInternalError(fmt.Errorf("put object: %w", err))
	}
	return u.publicURL + "/" + key, nil
}
