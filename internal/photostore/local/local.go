package local

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/vbonduro/gardenbook/internal/photostore"
)

// LocalPhotoStore keeps each owner's files in its own directory under basePath.
type LocalPhotoStore struct {
	basePath string
}

func NewLocalPhotoStore(basePath string) (*LocalPhotoStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	return &LocalPhotoStore{basePath: basePath}, nil
}

// Save writes r as a new file. The key keeps a sanitized form of filename
// plus a random suffix, e.g. "front_yard_3f9a1c2b7d.jpg".
func (s *LocalPhotoStore) Save(ctx context.Context, owner, filename, mimeType string, r io.Reader) (string, error) {
	dir, err := s.safeJoin(owner)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create owner directory: %w", err)
	}

	key, err := newKey(filename, mimeType)
	if err != nil {
		return "", err
	}
	filePath := filepath.Join(dir, key)

	f, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close file after write error", "error", cerr)
		}
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after write error", "error", rerr)
		}
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after close error", "error", rerr)
		}
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return key, nil
}

func (s *LocalPhotoStore) Get(ctx context.Context, owner, key string) (io.ReadCloser, string, error) {
	filePath, err := s.safeJoin(owner, key)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", photostore.ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	return f, extToMimeType(filePath), nil
}

func (s *LocalPhotoStore) Delete(ctx context.Context, owner, key string) error {
	filePath, err := s.safeJoin(owner, key)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return photostore.ErrNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// DeleteAll removes the owner's directory. A missing directory is not an error.
func (s *LocalPhotoStore) DeleteAll(ctx context.Context, owner string) error {
	dir, err := s.safeJoin(owner)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete photos of %s: %w", owner, err)
	}
	return nil
}

// safeJoin resolves parts relative to basePath and rejects directory traversal.
func (s *LocalPhotoStore) safeJoin(parts ...string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(append([]string{s.basePath}, parts...)...))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt")
	}
	return absPath, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9_]+`)

func newKey(filename, mimeType string) (string, error) {
	name := strings.ToLower(filepath.Base(filename))
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if extToMimeType(ext) == "" {
		ext = mimeTypeToExt(mimeType)
	}
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "_")
	if base == "" {
		base = "photo"
	}
	if len(base) > 50 {
		base = base[:50]
	}

	var suffix [5]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return "", fmt.Errorf("failed to generate file suffix: %w", err)
	}
	return base + "_" + hex.EncodeToString(suffix[:]) + ext, nil
}

func mimeTypeToExt(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// extToMimeType returns "" for extensions that are not accepted images.
func extToMimeType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return ""
	}
}
