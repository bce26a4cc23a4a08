package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

var ErrStorageDisabled = errors.New("photo storage is not configured")

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

func IsAllowedImageType(contentType string) bool {
	_, ok := imageExtensions[strings.ToLower(contentType)]
	return ok
}

// PhotoKey builds a fresh object key, e.g. "teams/3/leader1/<uuid>.jpg".
func PhotoKey(prefix string, contentType string) string {
	ext := imageExtensions[strings.ToLower(contentType)]
	return fmt.Sprintf("%s/%s%s", strings.Trim(prefix, "/"), uuid.NewString(), ext)
}

// PublicURL returns a pointer to the public URL of key, or nil when there is nothing to show.
func PublicURL(u FileUploader, key *string) *string {
	if u == nil || key == nil || *key == "" {
		return nil
	}
	url := u.GetPublicURL(*key)
	if url == "" {
		return nil
	}
	return &url
}

type disabledUploader struct{}

// NewDisabledUploader is used when no bucket is configured: reads yield no URLs, writes fail.
func NewDisabledUploader() FileUploader {
	return disabledUploader{}
}

func (disabledUploader) Upload(context.Context, string, string, io.Reader) (*UploadResult, error) {
	return nil, ErrStorageDisabled
}

func (disabledUploader) Delete(context.Context, string) error {
	return ErrStorageDisabled
}

func (disabledUploader) GetPublicURL(string) string {
	return ""
}
