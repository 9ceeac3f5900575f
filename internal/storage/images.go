package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"task_manager/internal/domain"

	"github.com/google/uuid"
)

// MaxImageSize caps uploaded business images.
const MaxImageSize = 5 << 20

var (
	ErrImageType = domain.Validation("Invalid file type. Only JPEG, PNG and GIF are allowed.")
	ErrImageSize = domain.Validation("File too large. Maximum size is 5MB.")
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Images stores uploaded files flat under one directory.
type Images struct {
	dir string
}

// NewImages makes sure dir exists.
func NewImages(dir string) (*Images, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Images{dir: dir}, nil
}

func (s *Images) Dir() string { return s.dir }

// Save validates the upload by sniffed content type and size, then writes it
// as <uuid><ext>. It returns the stored file name.
func (s *Images) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxImageSize {
		return "", ErrImageSize
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	defaultExt, ok := allowedImageTypes[http.DetectContentType(head)]
	if !ok {
		return "", ErrImageType
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" || len(ext) > 5 {
		ext = defaultExt
	}

	name := uuid.NewString() + ext
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}

	written, err := io.Copy(dst, io.LimitReader(io.MultiReader(bytes.NewReader(head), src), MaxImageSize+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > MaxImageSize {
		err = ErrImageSize
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", err
	}
	return name, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Images) Remove(name string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid image name %q", name)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
