package service

import (
	"context"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/itchan-dev/feed/shared/domain"
)

// AttachmentStorage keeps the file behind a post. Refs are opaque to the
// post store; backends produce them in Save and accept them back.
type AttachmentStorage interface {
	// Save stores data under a fresh ref derived from originalFilename's extension.
	Save(ctx context.Context, data io.Reader, originalFilename string) (domain.AttachmentRef, error)

	// Open returns the stored bytes. A ref that names nothing is a 404.
	Open(ctx context.Context, ref domain.AttachmentRef) (io.ReadCloser, error)

	// Release removes the file. Releasing an already missing ref is not an error.
	Release(ctx context.Context, ref domain.AttachmentRef) error
}

var (
	extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)
	refPattern = regexp.MustCompile(`^[0-9a-f-]{36}(\.[a-z0-9]{1,10})?$`)
)

// NewAttachmentRef names a new upload: a random uuid plus the original
// extension when it is a plain one.
func NewAttachmentRef(originalFilename string) domain.AttachmentRef {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	return uuid.NewString() + ext
}

// ValidAttachmentRef reports whether ref could have come from NewAttachmentRef.
// Anything else (separators, dots, empty) never names a stored file.
func ValidAttachmentRef(ref domain.AttachmentRef) bool {
	return refPattern.MatchString(ref)
}
