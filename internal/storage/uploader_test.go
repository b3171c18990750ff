package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/config"
	apperrors "github.com/tsai-yu-xuan/vuetify-shop-back/pkg/util"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestLocalUploaderSave(t *testing.T) {
	dir := t.TempDir()
	uploader, err := NewLocalUploader(config.UploadConfig{Dir: dir, PublicPrefix: "/uploads/", MaxBytes: 1024})
	require.NoError(t, err)

	url, err := uploader.Save(context.Background(), fileHeader(t, "cat.bin", pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestLocalUploaderRejects(t *testing.T) {
	uploader, err := NewLocalUploader(config.UploadConfig{Dir: t.TempDir(), PublicPrefix: "/uploads", MaxBytes: 8})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = uploader.Save(ctx, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = uploader.Save(ctx, fileHeader(t, "big.png", pngHeader))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	uploader.maxBytes = 1024
	_, err = uploader.Save(ctx, fileHeader(t, "notes.png", []byte("plain text pretending")))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	return &s3.PutObjectOutput{}, f.err
}

func TestS3UploaderSave(t *testing.T) {
	putter := &fakePutter{}
	uploader := newS3Uploader(putter, "shop", "https://cdn.example.com/", 1024, nil)

	url, err := uploader.Save(context.Background(), fileHeader(t, "cat.png", pngHeader))
	require.NoError(t, err)
	require.NotNil(t, putter.input)
	assert.Equal(t, "shop", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
	assert.Equal(t, "https://cdn.example.com/"+aws.ToString(putter.input.Key), url)
	assert.True(t, strings.HasPrefix(aws.ToString(putter.input.Key), "images/"))
	assert.Equal(t, pngHeader, putter.body)
}

func TestS3UploaderPutFailure(t *testing.T) {
	putter := &fakePutter{err: errors.New("bucket gone")}
	uploader := newS3Uploader(putter, "shop", "https://cdn.example.com", 1024, nil)

	_, err := uploader.Save(context.Background(), fileHeader(t, "cat.png", pngHeader))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}
