package validation

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
)

// ValidateAndParseMultipart caps the body at maxSize and parses the
// multipart form. Exceeding the cap closes the connection early, which
// clients see as a reset.
func ValidateAndParseMultipart(r *http.Request, w http.ResponseWriter, maxSize int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: request exceeds %.0f MB", ErrPayloadTooLarge, FormatSizeMB(maxSize))
		}
		return fmt.Errorf("failed to parse multipart form: %w", err)
	}
	return nil
}

// FormFile returns the single file uploaded under field, or ErrNoAttachment.
func FormFile(r *http.Request, field string) (*multipart.FileHeader, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, ErrNoAttachment
	}
	return r.MultipartForm.File[field][0], nil
}

// CalculateMaxRequestSize returns the maximum request size including overhead buffer.
func CalculateMaxRequestSize(maxAttachmentSize int64, bufferSize int64) int64 {
	return maxAttachmentSize + bufferSize
}

// FormatSizeMB converts bytes to megabytes for user-friendly error messages.
func FormatSizeMB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}
