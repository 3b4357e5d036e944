package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// UploadConstraints defines validation rules for file uploads
type UploadConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

// DefaultUploadConstraints matches the upload policy: images and PDFs up to 5MB
var DefaultUploadConstraints = UploadConstraints{
	AllowedMimeTypes: map[string]bool{
		"image/jpeg":      true,
		"image/png":       true,
		"application/pdf": true,
	},
	AllowedExtensions: map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".pdf":  true,
	},
	MaxSize: 5 << 20, // 5MB
}

// ValidateUpload validates a multipart file against the given constraints.
// The MIME type is detected from the file's leading bytes rather than the
// client-supplied Content-Type header.
func ValidateUpload(header *multipart.FileHeader, constraints UploadConstraints) error {
	// Check size first (before reading content)
	if header.Size > constraints.MaxSize {
		maxMB := constraints.MaxSize / (1 << 20)
		return fmt.Errorf("file too large: maximum size is %d MB", maxMB)
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// http.DetectContentType reads max 512 bytes to determine MIME type
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file: %w", err)
	}

	detectedType := http.DetectContentType(buffer[:n])
	// DetectContentType may append charset parameters for text-like content
	detectedType = strings.TrimSpace(strings.Split(detectedType, ";")[0])

	if !constraints.AllowedMimeTypes[detectedType] {
		return fmt.Errorf("invalid file type (detected: %s)", detectedType)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !constraints.AllowedExtensions[ext] {
		return fmt.Errorf("invalid file extension: %s", ext)
	}

	return nil
}
