package utils

import (
	"EmotionAnalyzer/internal/api/emotion"
	"crypto/rand"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	ValidateImageBytes(data []byte) error
	SaveTransientFile(dir string, file *multipart.FileHeader) (string, error)
	WriteTransientFile(dir string, data []byte) (string, error)
}

type utils struct {
	maxFileSize int64
}

func New(maxFileSize int64) IUtils {
	if maxFileSize <= 0 {
		maxFileSize = 5 * 1024 * 1024
	}
	return &utils{
		maxFileSize: maxFileSize,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return emotion.ErrNoImageUploaded
	}

	if file.Filename == "" {
		return emotion.ErrEmptyFilename
	}

	if file.Size > u.maxFileSize {
		return emotion.ErrFileTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "" && contentType != "application/octet-stream" {
		if !strings.HasPrefix(contentType, "image/") {
			return emotion.ErrInvalidFileType
		}
		return nil
	}

	// Clients such as curl without ;type= send no useful header, so sniff.
	f, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("read upload: %w", err)
	}

	return u.validateContent(head[:n])
}

func (u *utils) ValidateImageBytes(data []byte) error {
	if len(data) == 0 {
		return emotion.ErrNoImageUploaded
	}

	if int64(len(data)) > u.maxFileSize {
		return emotion.ErrFileTooLarge
	}

	return u.validateContent(data)
}

func (u *utils) validateContent(data []byte) error {
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return emotion.ErrInvalidFileType
	}
	return nil
}

// SaveTransientFile copies the upload into dir under a generated name. The
// client's filename contributes only its extension.
func (u *utils) SaveTransientFile(dir string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := u.createTransient(dir, filepath.Ext(file.Filename))
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write transient file: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("close transient file: %w", err)
	}

	return dst.Name(), nil
}

func (u *utils) WriteTransientFile(dir string, data []byte) (string, error) {
	dst, err := u.createTransient(dir, extensionFor(data))
	if err != nil {
		return "", err
	}

	if _, err := dst.Write(data); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write transient file: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("close transient file: %w", err)
	}

	return dst.Name(), nil
}

func (u *utils) createTransient(dir string, ext string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	id, err := u.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate transient name: %w", err)
	}

	name := filepath.Join(dir, id+strings.ToLower(ext))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create transient file: %w", err)
	}

	return f, nil
}

func extensionFor(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	default:
		return ""
	}
}
