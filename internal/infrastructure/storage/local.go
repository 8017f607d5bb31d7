package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalBackend writes avatars to a directory served statically at baseURL.
type LocalBackend struct {
	dir     string
	baseURL string
}

func NewLocalBackend(dir, baseURL string) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar dir: %w", err)
	}
	return &LocalBackend{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (b *LocalBackend) Dir() string { return b.dir }

// Put writes through a temp file so readers never observe a partial image.
func (b *LocalBackend) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(b.dir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(b.dir, key)); err != nil {
		return "", err
	}
	return b.baseURL + "/" + key, nil
}

func (b *LocalBackend) Delete(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, b.baseURL+"/")
	if !ok || key == "" || strings.ContainsAny(key, `/\`) {
		return nil
	}
	err := os.Remove(filepath.Join(b.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
