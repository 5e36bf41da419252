package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"studiodrive/internal/domain"
)

// maxJSONBody caps JSON request bodies
const maxJSONBody = 1 << 20

// ParseJSON decodes a JSON request body into dest.
// Malformed or oversized bodies wrap domain.ErrValidation.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty: %w", domain.ErrValidation)
		}
		return fmt.Errorf("%w: invalid JSON: %v", domain.ErrValidation, err)
	}

	return nil
}

// UploadedFile is a multipart file read fully into memory
type UploadedFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// ParseUploadedFile reads the multipart form field into memory, limited to maxBytes
func ParseUploadedFile(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (*UploadedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile(field)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("file exceeds %d bytes: %w", maxBytes, domain.ErrTooLarge)
		}
		return nil, fmt.Errorf("%w: missing multipart field %q: %v", domain.ErrValidation, field, err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	return &UploadedFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}
