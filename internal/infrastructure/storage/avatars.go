package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
)

const (
	DefaultAvatarSize = 250
	avatarContentType = "image/png"
)

// Backend persists encoded avatar images.
type Backend interface {
	Put(ctx context.Context, key, contentType string, data []byte) (url string, err error)
	// Delete removes the object behind url. URLs the backend did not produce
	// are ignored.
	Delete(ctx context.Context, url string) error
}

// AvatarStore implements ports.AvatarStore on top of a Backend.
type AvatarStore struct {
	backend Backend
	size    int
}

func NewAvatarStore(backend Backend, size int) *AvatarStore {
	if size <= 0 {
		size = DefaultAvatarSize
	}
	return &AvatarStore{backend: backend, size: size}
}

func (s *AvatarStore) Save(ctx context.Context, accountID string, src io.Reader) (string, error) {
	data, err := normalize(src, s.size)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s-%s.png", accountID, uuid.NewString())
	url, err := s.backend.Put(ctx, key, avatarContentType, data)
	if err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	return url, nil
}

func (s *AvatarStore) Remove(ctx context.Context, url string) error {
	return s.backend.Delete(ctx, url)
}
