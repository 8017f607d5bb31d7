package ports

import (
	"context"
	"io"
)

// AvatarStore normalises uploaded images and keeps the resulting assets.
type AvatarStore interface {
	Save(ctx context.Context, accountID string, src io.Reader) (url string, err error)
	// Remove deletes an asset previously returned by Save. References the
	// store does not own are ignored.
	Remove(ctx context.Context, url string) error
}

// AvatarCleanup asks for a replaced avatar asset to be removed.
type AvatarCleanup struct {
	AccountID string
	URL       string
}

// CleanupQueue accepts avatar removals to run off the request path.
type CleanupQueue interface {
	Enqueue(job AvatarCleanup)
}
