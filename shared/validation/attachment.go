package validation

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/itchan-dev/feed/shared/domain"
	_ "golang.org/x/image/webp"
)

// ValidateAttachment checks an uploaded file against the MIME allowlist and
// size limit. Images must decode. The returned PendingFile holds the opened
// file; the caller closes it.
func ValidateAttachment(fileHeader *multipart.FileHeader, allowedMimes []string, maxSize int64) (*domain.PendingFile, error) {
	if fileHeader.Size > maxSize {
		return nil, fmt.Errorf("%w: %s is %.1f MB, limit is %.1f MB", ErrPayloadTooLarge, fileHeader.Filename, FormatSizeMB(fileHeader.Size), FormatSizeMB(maxSize))
	}

	mimeType, err := DetectMimeType(fileHeader)
	if err != nil {
		return nil, err
	}
	if !BuildAllowedMimeMap(allowedMimes)[mimeType] {
		return nil, fmt.Errorf("%w: %s (file: %s)", ErrInvalidMimeType, mimeType, fileHeader.Filename)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}

	width, height := ExtractImageDimensions(file, mimeType)
	if strings.HasPrefix(mimeType, "image/") && width == nil {
		file.Close()
		return nil, fmt.Errorf("%w: %s is not a readable image", ErrInvalidMimeType, fileHeader.Filename)
	}

	return &domain.PendingFile{
		Filename:    fileHeader.Filename,
		SizeBytes:   fileHeader.Size,
		MimeType:    mimeType,
		ImageWidth:  width,
		ImageHeight: height,
		Data:        file,
	}, nil
}

func BuildAllowedMimeMap(mimes []string) map[string]bool {
	allowed := make(map[string]bool, len(mimes))
	for _, m := range mimes {
		allowed[strings.ToLower(m)] = true
	}
	return allowed
}

func DetectMimeType(fileHeader *multipart.FileHeader) (string, error) {
	mimeType := fileHeader.Header.Get("Content-Type")

	// If no Content-Type or it's generic, detect from extension
	if mimeType == "" || mimeType == "application/octet-stream" {
		if detected := mime.TypeByExtension(filepath.Ext(fileHeader.Filename)); detected != "" {
			mimeType = detected
		}
	}
	if mimeType == "" {
		return "", fmt.Errorf("%w: could not detect MIME type for file: %s", ErrInvalidMimeType, fileHeader.Filename)
	}

	// drop parameters such as "; charset=utf-8"
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mediaType
	}
	return strings.ToLower(mimeType), nil
}

// ExtractImageDimensions returns nil, nil for non-images and for images that
// fail to decode. The read position is rewound either way.
func ExtractImageDimensions(file io.ReadSeeker, mimeType string) (*int, *int) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, nil
	}
	defer file.Seek(0, io.SeekStart)

	img, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, nil
	}
	width, height := img.Width, img.Height
	return &width, &height
}
