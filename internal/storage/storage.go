package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"auction-manager/internal/auctionerrors"
	"auction-manager/internal/config"
)

// ImageStore keeps uploaded auction and item pictures
type ImageStore interface {
	// Save stores data under key and returns the public URL of the object
	Save(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// SecureImageExtensions lists the image MIME types accepted for upload and their extension
var SecureImageExtensions = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
	"image/tiff": "tiff",
	"image/webp": "webp",
}

// CheckImageType reports whether contentType is an accepted image type and returns its extension
func CheckImageType(contentType string) (string, bool) {
	ext, ok := SecureImageExtensions[contentType]
	return ext, ok
}

// Image is an uploaded picture that passed validation
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// ReadImage reads at most maxBytes from r and sniffs the content type.
// Oversized or non-image payloads return ErrInvalidImage.
func ReadImage(r io.Reader, maxBytes int64) (Image, error) {
	data, err := io.ReadAll(NewMaxSizeReader(r, maxBytes))
	if err != nil {
		var limitErr *ReachLimitError
		if errors.As(err, &limitErr) {
			return Image{}, fmt.Errorf("%w: %s", auctionerrors.ErrInvalidImage, limitErr.Error())
		}
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty file", auctionerrors.ErrInvalidImage)
	}

	contentType := http.DetectContentType(data)
	ext, ok := CheckImageType(contentType)
	if !ok {
		return Image{}, fmt.Errorf("%w: unsupported type %s", auctionerrors.ErrInvalidImage, contentType)
	}
	return Image{Data: data, ContentType: contentType, Extension: ext}, nil
}

// New builds the image store selected by the configuration
func New(ctx context.Context, cfg config.StorageConfig) (ImageStore, error) {
	switch cfg.Backend {
	case "local":
		return NewLocalStore(cfg.LocalPath, cfg.PublicBaseURL)
	case "s3":
		return NewS3Store(ctx, cfg.S3, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("storage: unsupported backend %q", cfg.Backend)
	}
}
