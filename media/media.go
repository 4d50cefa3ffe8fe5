// Package media stores uploaded post images on the local filesystem.
package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const URLPrefix = "/media/"

var (
	ErrNotImage = errors.New("upload a valid image: the file is not an image or is corrupted")
	ErrTooLarge = errors.New("the image is too large")
)

var allowed = map[string]bool{
	"image/gif":  true,
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

type Storage struct {
	Root     string
	MaxBytes int64
}

func New(root string, maxBytes int64) (*Storage, error) {
	if err := os.MkdirAll(filepath.Join(root, "posts"), 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &Storage{Root: root, MaxBytes: maxBytes}, nil
}

// SavePostImage validates fh by its content and stores it under posts/.
// It returns the stored name relative to Root.
func (s *Storage) SavePostImage(fh *multipart.FileHeader) (string, error) {
	if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
		return "", ErrTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect type: %w", err)
	}
	if !allowed[mt.String()] {
		return "", ErrNotImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := path.Join("posts", uuid.NewString()+mt.Extension())
	if err := s.write(name, src); err != nil {
		return "", err
	}
	return name, nil
}

// write copies src to name under Root. A failed copy leaves no file behind.
func (s *Storage) write(name string, src io.Reader) error {
	full := filepath.Join(s.Root, filepath.FromSlash(name))
	dst, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(full)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(full)
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}

// Remove deletes a stored file. Missing files and names escaping Root
// are ignored.
func (s *Storage) Remove(name string) error {
	if name == "" || strings.Contains(name, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func URL(name string) string {
	if name == "" {
		return ""
	}
	return URLPrefix + name
}
