// Package fs keeps attachments as flat files under one root directory.
package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/itchan-dev/feed/backend/internal/service"
	"github.com/itchan-dev/feed/shared/domain"
	internal_errors "github.com/itchan-dev/feed/shared/errors"
)

type Storage struct {
	rootPath string
}

// Ensure Storage struct implements the interface at compile time.
var _ service.AttachmentStorage = (*Storage)(nil)

var errAttachmentNotFound = internal_errors.NotFound("Attachment not found")

func New(rootPath string) (*Storage, error) {
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}

	return &Storage{rootPath: p}, nil
}

// Save writes data to <root>/<ref>.
func (s *Storage) Save(ctx context.Context, data io.Reader, originalFilename string) (domain.AttachmentRef, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := service.NewAttachmentRef(originalFilename)
	fullPath := filepath.Join(s.rootPath, ref)

	dst, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(dst, data); err != nil {
		dst.Close()
		os.Remove(fullPath) // best effort
		return "", fmt.Errorf("failed to copy file data: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to flush file: %w", err)
	}

	return ref, nil
}

func (s *Storage) Open(ctx context.Context, ref domain.AttachmentRef) (io.ReadCloser, error) {
	if !service.ValidAttachmentRef(ref) {
		return nil, errAttachmentNotFound
	}

	file, err := os.Open(filepath.Join(s.rootPath, ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errAttachmentNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

func (s *Storage) Release(ctx context.Context, ref domain.AttachmentRef) error {
	if !service.ValidAttachmentRef(ref) {
		return fmt.Errorf("refusing to release malformed attachment ref %q", ref)
	}

	err := os.Remove(filepath.Join(s.rootPath, ref))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
