package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
)

const (
	maxPhotoSize   = 10 << 20
	photoFormField = "photo"
)

// readPhoto достаёт файл из multipart-поля "photo". Вызвавший закрывает файл.
func readPhoto(w http.ResponseWriter, r *http.Request) (multipart.File, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize+1<<20)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		return nil, "", fmt.Errorf("failed to parse multipart form: %w", err)
	}

	file, header, err := r.FormFile(photoFormField)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get %s file from form: %w", photoFormField, err)
	}
	if header.Size > maxPhotoSize {
		file.Close()
		return nil, "", fmt.Errorf("photo must not be larger than %d bytes", maxPhotoSize)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		file.Close()
		return nil, "", errors.New("content-type header is required for photo")
	}
	return file, contentType, nil
}
