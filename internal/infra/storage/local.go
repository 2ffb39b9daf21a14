package storage

import (
	"context"
	"os"
	"path/filepath"
)

// LocalStore writes artifacts under a base directory (default: ./output).
type LocalStore struct {
	baseDir string
}

func NewLocal(baseDir string) *LocalStore {
	if baseDir == "" {
		baseDir = "output"
	}
	return &LocalStore{baseDir: baseDir}
}

// Put implementasi ArtifactStore; returns the file path as the artifact URL.
func (s *LocalStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
