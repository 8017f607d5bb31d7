package ports

import (
	"context"

	"github.com/99minutos/account-service/internal/core/domain"
)

// AccountRepository is the credential store. Every mutation is a single
// atomic call so concurrent requests never lose updates.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)

	// ReplaceToken stores token as the account's only live token and returns
	// the token it replaced ("" when the account was logged out). An empty
	// token clears the session.
	ReplaceToken(ctx context.Context, id, token string) (previous string, err error)

	UpdateSubscription(ctx context.Context, id string, tier domain.Subscription) (*domain.Account, error)

	// ReplaceAvatar stores url and returns the previous avatar reference.
	ReplaceAvatar(ctx context.Context, id, url string) (previous string, err error)
}
