package ports

import (
	"context"

	"github.com/99minutos/account-service/internal/core/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token   string
	Account *domain.Account
}

type AuthService interface {
	Signup(ctx context.Context, email, password string) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, accountID string) error
}

// Authenticator resolves a bearer token to the account that currently owns it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Account, error)
}
