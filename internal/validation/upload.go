package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

const (
	MaxFileNameLength = 255
	MaxAccessCode     = 99_999_999
	MaxRecipients     = 50
)

// FileConstraints defines validation rules for declared uploads.
// The server never sees the bytes; type and size are enforced through the signed PUT URL.
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

// DefaultConstraints covers documents, images, archives and plain text
func DefaultConstraints(maxSize int64) FileConstraints {
	return FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"application/pdf":    true,
			"application/zip":    true,
			"application/msword": true,
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
			"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
			"image/jpeg": true,
			"image/png":  true,
			"image/webp": true,
			"image/gif":  true,
			"text/plain": true,
			"text/csv":   true,
			"video/mp4":  true,
		},
		AllowedExtensions: map[string]bool{
			".pdf": true, ".zip": true, ".doc": true, ".docx": true, ".xlsx": true, ".pptx": true,
			".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
			".txt": true, ".csv": true, ".mp4": true,
		},
		MaxSize: maxSize,
	}
}

// ValidateUpload checks the declared file name, MIME type and size
func ValidateUpload(fileName, fileType string, size int64, c FileConstraints) error {
	name := strings.TrimSpace(fileName)
	if name == "" {
		return invalid("file name is required")
	}
	if len(name) > MaxFileNameLength {
		return invalid("file name is too long (max %d characters)", MaxFileNameLength)
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return invalid("file name must not contain path separators")
	}

	if !c.AllowedMimeTypes[fileType] {
		return invalid("file type not allowed: %s", fileType)
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !c.AllowedExtensions[ext] {
		return invalid("file extension not allowed: %q", ext)
	}

	if size <= 0 {
		return invalid("file size must be positive")
	}
	if size > c.MaxSize {
		return invalid("file too large: maximum size is %d MB", c.MaxSize/(1<<20))
	}

	return nil
}

// ValidateAccessCode accepts numeric codes of up to eight digits
func ValidateAccessCode(code int64) error {
	if code < 0 || code > MaxAccessCode {
		return invalid("access code must be between 0 and %d", MaxAccessCode)
	}
	return nil
}

var folderPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,62}$`)

// ValidateFolder accepts a single key segment used as the storage prefix
func ValidateFolder(folder string) error {
	if !folderPattern.MatchString(folder) {
		return invalid("folder must be 1-63 letters, digits, '-' or '_'")
	}
	return nil
}
