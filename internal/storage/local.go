package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"auction-manager/utils"
)

// LocalStore writes images below a directory on disk
type LocalStore struct {
	basePath  string
	publicURL *url.URL
}

// NewLocalStore creates the base directory if needed. Object URLs are
// publicBaseURL joined with the key, "/media" when empty.
func NewLocalStore(basePath, publicBaseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create image directory: %w", err)
	}
	if publicBaseURL == "" {
		publicBaseURL = "/media"
	}
	u, err := url.Parse(publicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse public base URL: %w", err)
	}
	return &LocalStore{basePath: basePath, publicURL: u}, nil
}

// Save writes data to basePath/key
func (s *LocalStore) Save(_ context.Context, key, _ string, data []byte) (string, error) {
	path, err := s.safeJoin(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("storage: create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		if rerr := os.Remove(path); rerr != nil && !os.IsNotExist(rerr) {
			utils.Error("Failed to remove partial image", map[string]any{"key": key, "error": rerr.Error()})
		}
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return s.publicURL.JoinPath(key).String(), nil
}

// Delete removes the file stored under key
func (s *LocalStore) Delete(_ context.Context, key string) error {
	path, err := s.safeJoin(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete file: %w", err)
	}
	return nil
}

// safeJoin resolves key relative to basePath and rejects directory traversal
func (s *LocalStore) safeJoin(key string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("storage: invalid base path: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(s.basePath, key))
	if err != nil {
		return "", fmt.Errorf("storage: invalid path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: path traversal attempt %q", key)
	}
	return absPath, nil
}
