package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// uploadURLPrefix is where the router serves the upload directory.
const uploadURLPrefix = "/uploads/"

var allowedUploads = map[string][]string{
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".gif":  {"image/gif"},
	".pdf":  {"application/pdf"},
}

// UploadService stores bill images on local disk under <dir>/bills.
type UploadService struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

// NewUploadService creates a new UploadService rooted at dir.
func NewUploadService(dir string, maxBytes int64) *UploadService {
	return &UploadService{dir: dir, maxBytes: maxBytes, now: time.Now}
}

// MaxBytes is the largest accepted file.
func (s *UploadService) MaxBytes() int64 { return s.maxBytes }

// SaveBillImage checks the file name and sniffed content type, writes the
// file and returns its public URL.
func (s *UploadService) SaveBillImage(filename string, size int64, file io.ReadSeeker) (string, error) {
	if size > s.maxBytes {
		return "", ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(filename))
	allowed, ok := allowedUploads[ext]
	if !ok {
		return "", ErrUnsupportedFile
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}
	if !mimetype.EqualsAny(mtype.String(), allowed...) {
		return "", ErrUnsupportedFile
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	billsDir := filepath.Join(s.dir, "bills")
	if err := os.MkdirAll(billsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := fmt.Sprintf("bill-%d-%s%s", s.now().UnixMilli(), uuid.NewString(), ext)
	dst, err := os.Create(filepath.Join(billsDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(file, s.maxBytes+1))
	if err == nil && written > s.maxBytes {
		err = ErrFileTooLarge
	}
	if err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", err
	}
	return uploadURLPrefix + "bills/" + name, nil
}

// Remove deletes the file behind a URL returned by SaveBillImage. URLs that
// point outside the upload directory are ignored.
func (s *UploadService) Remove(url string) error {
	rel, ok := strings.CutPrefix(url, uploadURLPrefix)
	if !ok || rel == "" {
		return nil
	}
	path := filepath.Join(s.dir, filepath.FromSlash(rel))
	inside, err := filepath.Rel(filepath.Clean(s.dir), path)
	if err != nil || inside == "." || inside == ".." || strings.HasPrefix(inside, ".."+string(os.PathSeparator)) {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
