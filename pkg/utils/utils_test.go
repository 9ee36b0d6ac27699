package utils

import (
	"EmotionAnalyzer/internal/api/emotion"
	"bytes"
	"errors"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func fileHeader(t *testing.T, filename, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	writer.Close()

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { form.RemoveAll() })

	return form.File["image"][0]
}

func TestValidateImageFile(t *testing.T) {
	u := New(64)

	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		want        error
	}{
		{"declared image", "face.png", "image/png", pngHeader, nil},
		{"sniffed image", "face", "application/octet-stream", pngHeader, nil},
		{"declared text", "notes.txt", "text/plain", []byte("hello"), emotion.ErrInvalidFileType},
		{"sniffed text", "notes", "", []byte("hello"), emotion.ErrInvalidFileType},
		{"too large", "big.png", "image/png", bytes.Repeat([]byte{1}, 65), emotion.ErrFileTooLarge},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := u.ValidateImageFile(fileHeader(t, tc.filename, tc.contentType, tc.data))
			if !errors.Is(err, tc.want) && err != tc.want {
				t.Errorf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateImageFileMissing(t *testing.T) {
	u := New(0)

	if err := u.ValidateImageFile(nil); !errors.Is(err, emotion.ErrNoImageUploaded) {
		t.Errorf("Expected ErrNoImageUploaded, got %v", err)
	}

	header := &multipart.FileHeader{Header: textproto.MIMEHeader{"Content-Type": {"image/png"}}}
	if err := u.ValidateImageFile(header); !errors.Is(err, emotion.ErrEmptyFilename) {
		t.Errorf("Expected ErrEmptyFilename, got %v", err)
	}
}

func TestSaveTransientFileIgnoresClientPath(t *testing.T) {
	dir := t.TempDir()
	u := New(0)

	path, err := u.SaveTransientFile(dir, fileHeader(t, "../../etc/Passwd.PNG", "image/png", pngHeader))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if filepath.Dir(path) != dir {
		t.Errorf("Expected file inside %s, got %s", dir, path)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("Expected .png extension, got %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(data, pngHeader) {
		t.Errorf("Transient file content mismatch: %v", err)
	}
}

func TestWriteTransientFile(t *testing.T) {
	dir := t.TempDir()
	u := New(0)

	first, err := u.WriteTransientFile(dir, pngHeader)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := u.WriteTransientFile(filepath.Join(dir, "nested"), pngHeader)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if first == second {
		t.Errorf("Expected distinct transient names, got %s twice", first)
	}
	if filepath.Ext(first) != ".png" {
		t.Errorf("Expected .png extension, got %s", first)
	}
}

func TestValidateImageBytes(t *testing.T) {
	u := New(0)

	if err := u.ValidateImageBytes(pngHeader); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := u.ValidateImageBytes(nil); !errors.Is(err, emotion.ErrNoImageUploaded) {
		t.Errorf("Expected ErrNoImageUploaded, got %v", err)
	}
	if err := u.ValidateImageBytes([]byte("plain text")); !errors.Is(err, emotion.ErrInvalidFileType) {
		t.Errorf("Expected ErrInvalidFileType, got %v", err)
	}
}
