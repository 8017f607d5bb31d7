package ports

import (
	"context"
	"io"

	"github.com/99minutos/account-service/internal/core/domain"
)

// AvatarUpload is a file received by the transport layer.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

type AccountService interface {
	Current(ctx context.Context, accountID string) (*domain.Account, error)
	// UpdateSubscription distinguishes an absent tier (nil) from an invalid one.
	UpdateSubscription(ctx context.Context, accountID string, tier *string) (domain.Subscription, error)
	UpdateAvatar(ctx context.Context, accountID string, upload *AvatarUpload) (string, error)
}
