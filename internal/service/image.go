package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pakodev28/foodgram-project-react/config"
)

var errInvalidDataURI = errors.New("image must be a base64 encoded data URI")

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageStore persists an uploaded image and returns the URL it is served from
type ImageStore interface {
	Save(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// StoredImage is an image written to an ImageStore
type StoredImage struct {
	Key string
	URL string
}

// S3ImageStore stores images in the configured S3 bucket
type S3ImageStore struct {
	s3Config *config.S3Config
}

// NewS3ImageStore creates an S3 backed ImageStore
func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

func (s *S3ImageStore) Save(ctx context.Context, key, contentType string, data []byte) (string, error) {
	return s.s3Config.PutObject(ctx, key, contentType, data)
}

func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	return s.s3Config.DeleteObject(ctx, key)
}

// LocalImageStore writes images below a media directory
type LocalImageStore struct {
	dir     string
	baseURL string
}

// NewLocalImageStore creates an ImageStore writing into dir and serving under baseURL
func NewLocalImageStore(dir, baseURL string) *LocalImageStore {
	return &LocalImageStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *LocalImageStore) Save(ctx context.Context, key, contentType string, data []byte) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *LocalImageStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}

// ImageService decodes submitted recipe images and stores them
type ImageService struct {
	store ImageStore
}

// NewImageService creates a new ImageService instance
func NewImageService(store ImageStore) *ImageService {
	return &ImageService{store: store}
}

// NewImageStore picks S3 when a bucket is configured and the media directory otherwise
func NewImageStore(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	if cfg.S3BucketName == "" {
		log.Printf("[ImageService] storing images in %s", cfg.MediaDir)
		return NewLocalImageStore(cfg.MediaDir, cfg.MediaURL), nil
	}
	s3Config, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure S3: %w", err)
	}
	log.Printf("[ImageService] storing images in bucket %s", cfg.S3BucketName)
	return NewS3ImageStore(s3Config), nil
}

// StoreRecipeImage decodes a data URI and stores the image
func (s *ImageService) StoreRecipeImage(ctx context.Context, image string) (*StoredImage, error) {
	contentType, data, err := DecodeDataURI(image)
	if err != nil {
		return nil, fieldError("image", err.Error())
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, fieldError("image", fmt.Sprintf("unsupported image type %s", contentType))
	}
	if detected := http.DetectContentType(data); !strings.HasPrefix(detected, "image/") {
		return nil, fieldError("image", "uploaded file is not an image")
	}

	key := "recipes/images/" + uuid.NewString() + ext
	url, err := s.store.Save(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	return &StoredImage{Key: key, URL: url}, nil
}

// Discard removes an image whose recipe was never saved. Failures are only logged.
func (s *ImageService) Discard(ctx context.Context, image *StoredImage) {
	if image == nil {
		return
	}
	if err := s.store.Delete(ctx, image.Key); err != nil {
		log.Printf("[ImageService] failed to discard %s: %v", image.Key, err)
	}
}

// DecodeDataURI splits a data:<type>;base64,<payload> URI into its content type and bytes
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return "", nil, errInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errInvalidDataURI
	}
	params := strings.Split(meta, ";")
	contentType := strings.ToLower(strings.TrimSpace(params[0]))
	isBase64 := false
	for _, p := range params[1:] {
		if strings.TrimSpace(p) == "base64" {
			isBase64 = true
		}
	}
	if !isBase64 || contentType == "" {
		return "", nil, errInvalidDataURI
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return "", nil, errInvalidDataURI
		}
	}
	if len(data) == 0 {
		return "", nil, errInvalidDataURI
	}
	return contentType, data, nil
}
