package services

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
)

func TestSaveBillImage(t *testing.T) {
	dir := t.TempDir()
	uploads := NewUploadService(dir, 1<<20)

	for _, tc := range []struct {
		filename string
		content  []byte
	}{
		{"receipt.PNG", pngBytes},
		{"statement.pdf", pdfBytes},
	} {
		url, err := uploads.SaveBillImage(tc.filename, int64(len(tc.content)), bytes.NewReader(tc.content))
		if err != nil {
			t.Fatalf("SaveBillImage(%s): %v", tc.filename, err)
		}
		if !strings.HasPrefix(url, "/uploads/bills/bill-") {
			t.Errorf("url = %q", url)
		}
		if ext := strings.ToLower(filepath.Ext(tc.filename)); !strings.HasSuffix(url, ext) {
			t.Errorf("url %q lost extension %q", url, ext)
		}

		path := filepath.Join(dir, "bills", filepath.Base(url))
		written, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read stored file: %v", err)
		}
		if !bytes.Equal(written, tc.content) {
			t.Errorf("stored %d bytes, want %d", len(written), len(tc.content))
		}

		if err := uploads.Remove(url); err != nil {
			t.Fatalf("Remove: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("file still present after Remove: %v", err)
		}
	}
}

func TestSaveBillImageRejects(t *testing.T) {
	uploads := NewUploadService(t.TempDir(), 64)

	tests := []struct {
		name     string
		filename string
		content  []byte
		size     int64
		want     error
	}{
		{"wrong extension", "tool.exe", pngBytes, int64(len(pngBytes)), ErrUnsupportedFile},
		{"content mismatch", "photo.png", []byte("just some text, not an image"), 28, ErrUnsupportedFile},
		{"declared too large", "photo.png", pngBytes, 65, ErrFileTooLarge},
		{"actually too large", "doc.pdf", append(append([]byte{}, pdfBytes...), make([]byte, 64)...), 10, ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uploads.SaveBillImage(tt.filename, tt.size, bytes.NewReader(tt.content))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRemoveIgnoresForeignPaths(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(t.TempDir(), "keep.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	uploads := NewUploadService(dir, 1<<20)

	for _, url := range []string{"", "https://example.com/a.png", "/uploads/../../" + outside, "/uploads/bills/missing.png"} {
		if err := uploads.Remove(url); err != nil {
			t.Errorf("Remove(%q) = %v", url, err)
		}
	}
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("file outside upload dir touched: %v", err)
	}
}

func TestRemoveWithRelativeUploadDir(t *testing.T) {
	for _, dir := range []string{".", "./uploads", "uploads/"} {
		t.Run(dir, func(t *testing.T) {
			t.Chdir(t.TempDir())
			uploads := NewUploadService(dir, 1<<20)

			url, err := uploads.SaveBillImage("receipt.png", int64(len(pngBytes)), bytes.NewReader(pngBytes))
			if err != nil {
				t.Fatalf("SaveBillImage: %v", err)
			}
			path := filepath.Join(dir, "bills", filepath.Base(url))
			if _, err := os.Stat(path); err != nil {
				t.Fatalf("stored file missing: %v", err)
			}

			if err := uploads.Remove(url); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Errorf("file still present after Remove: %v", err)
			}
		})
	}
}
