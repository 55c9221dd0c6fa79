// file: internal/metadata/cover.go
// version: 2.0.0
// guid: 4efaa7b8-e29a-47f3-84f7-39b46bfc9a01

package metadata

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var coverExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// SaveCover writes cover image bytes to {destDir}/covers/{bookID}.{ext}, with
// the extension sniffed from the data. Returns the existing path without
// writing when a cover for bookID is already present. progress, when non-nil,
// also receives the bytes as they are written.
func SaveCover(data []byte, destDir, bookID string, progress io.Writer) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty cover data")
	}
	if bookID == "" {
		return "", fmt.Errorf("empty book ID")
	}
	if existing := CoverPathForBook(destDir, bookID); existing != "" {
		return existing, nil
	}

	contentType := DetectCoverType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("unexpected content type: %s", contentType)
	}

	coversDir := filepath.Join(destDir, "covers")
	if err := os.MkdirAll(coversDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create covers directory: %w", err)
	}

	destPath := filepath.Join(coversDir, bookID+extensionFromContentType(contentType))
	f, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create cover file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	if progress != nil {
		w = io.MultiWriter(f, progress)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to write cover file: %w", err)
	}

	return destPath, nil
}

// CoverPathForBook returns the local cover file path if it exists, empty string otherwise.
func CoverPathForBook(destDir string, bookID string) string {
	coversDir := filepath.Join(destDir, "covers")
	matches, _ := filepath.Glob(filepath.Join(coversDir, bookID+".*"))
	for _, m := range matches {
		ext := strings.ToLower(filepath.Ext(m))
		for _, want := range coverExtensions {
			if ext == want {
				return m
			}
		}
	}
	return ""
}

// DetectCoverType sniffs the MIME type of image bytes.
func DetectCoverType(data []byte) string {
	return http.DetectContentType(data)
}

func extensionFromContentType(ct string) string {
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "png"):
		return ".png"
	case strings.Contains(ct, "gif"):
		return ".gif"
	case strings.Contains(ct, "webp"):
		return ".webp"
	default:
		return ".jpg"
	}
}
