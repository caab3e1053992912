package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

var allowedResumeExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".doc":  true,
	".docx": true,
}

type StorageService interface {
	SaveResume(sessionID string, file *multipart.FileHeader) (string, string, error)
	GetFilePath(filename string) string
	DeleteFile(filename string) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath  string
	maxFileSize int64
}

func NewStorageService(uploadPath string, maxFileSize int64) StorageService {
	return &storageService{
		uploadPath:  uploadPath,
		maxFileSize: maxFileSize,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// SaveResume stores the upload as <sessionID><ext>. Only the extension of the
// sanitized original filename survives; the rest of the name is discarded.
func (s *storageService) SaveResume(sessionID string, file *multipart.FileHeader) (string, string, error) {
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return "", "", &FileRejectedError{Reason: fmt.Sprintf("resume file too large. Max size: %d bytes", s.maxFileSize)}
	}

	ext := strings.ToLower(filepath.Ext(SanitizeFilename(file.Filename)))
	if !allowedResumeExtensions[ext] {
		return "", "", &FileRejectedError{Reason: fmt.Sprintf("invalid file extension: %q", ext)}
	}

	filename := sessionID + ext
	filePath := filepath.Join(s.uploadPath, filename)

	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	if err := writeUpload(filePath, src); err != nil {
		return "", "", err
	}

	return filename, filePath, nil
}

// writeUpload copies src to path. On any failure the partial file is removed.
func writeUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return fmt.Errorf("failed to save file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close file: %w", err)
	}

	return nil
}

func (s *storageService) GetFilePath(filename string) string {
	return filepath.Join(s.uploadPath, filepath.Base(filename))
}

func (s *storageService) DeleteFile(filename string) error {
	filePath := s.GetFilePath(filename)
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// FileRejectedError marks an upload refused for its size or type.
type FileRejectedError struct {
	Reason string
}

func (e *FileRejectedError) Error() string {
	return e.Reason
}

// SanitizeFilename strips directory components and keeps only ASCII letters,
// digits, dot, dash and underscore.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}

	return strings.Trim(b.String(), "._")
}
