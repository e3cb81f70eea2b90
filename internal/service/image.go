package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
)

// Image folders
const (
	RecipeImagesFolder = "recipes/images"
	AvatarsFolder      = "users/avatars"
)

// ImageStore persists uploaded images and returns their public URL
type ImageStore interface {
	Save(ctx context.Context, folder string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DecodeDataURL decodes "data:image/<type>;base64,<payload>".
func DecodeDataURL(raw string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(raw, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, "", errors.New("image must be a base64 data URL")
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if _, ok := imageExtensions[contentType]; !ok {
		return nil, "", fmt.Errorf("unsupported image type %q", contentType)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 image payload: %w", err)
	}
	if len(data) == 0 {
		return nil, "", errors.New("image is empty")
	}
	return data, contentType, nil
}

// saveDataURL decodes a data URL and stores it; decode failures are
// reported against field.
func saveDataURL(ctx context.Context, store ImageStore, field, folder, raw string) (string, error) {
	data, contentType, err := DecodeDataURL(raw)
	if err != nil {
		return "", newValidationError(field, "%s", err.Error())
	}
	url, err := store.Save(ctx, folder, data, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return url, nil
}

// deleteQuietly removes a replaced image; failures only get logged.
func deleteQuietly(ctx context.Context, store ImageStore, url string) {
	if url == "" {
		return
	}
	if err := store.Delete(ctx, url); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("image", url).Msg("failed to delete image")
	}
}

func objectName(folder, contentType string) string {
	return path.Join(folder, uuid.NewString()+imageExtensions[contentType])
}

// s3API is the subset of the S3 client used for images
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3ImageStore keeps images in an S3 bucket
type S3ImageStore struct {
	client s3API
	bucket *config.S3Config
}

func NewS3ImageStore(cfg *config.S3Config) *S3ImageStore {
	return &S3ImageStore{client: cfg.Client, bucket: cfg}
}

// Save uploads image data to S3 and returns the public URL
func (s *S3ImageStore) Save(ctx context.Context, folder string, data []byte, contentType string) (string, error) {
	key := objectName(folder, contentType)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      s.bucket.Bucket(),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := s.bucket.ObjectURL(key)
	logging.Ctx(ctx).Debug().Str("url", url).Msg("uploaded image to S3")
	return url, nil
}

// Delete removes an object previously returned by Save. Foreign URLs are ignored.
func (s *S3ImageStore) Delete(ctx context.Context, url string) error {
	prefix := s.bucket.ObjectURL("")
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.bucket.Bucket(),
		Key:    aws.String(strings.TrimPrefix(url, prefix)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// LocalImageStore writes images under root and serves them from baseURL/media.
type LocalImageStore struct {
	root    string
	baseURL string
}

func NewLocalImageStore(root, baseURL string) *LocalImageStore {
	return &LocalImageStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalImageStore) Save(_ context.Context, folder string, data []byte, contentType string) (string, error) {
	name := objectName(folder, contentType)
	target := filepath.Join(s.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.baseURL + "/media/" + name, nil
}

func (s *LocalImageStore) Delete(_ context.Context, url string) error {
	prefix := s.baseURL + "/media/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	rel := path.Clean("/" + strings.TrimPrefix(url, prefix))
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
