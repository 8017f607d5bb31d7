package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

// timingPassword is hashed once and compared against when a login names an
// unknown email, so both failure paths cost one bcrypt comparison.
const timingPassword = "account-service/timing-equaliser"

// AuthService owns the session lifecycle: signup, login, logout and request
// authentication. It keeps at most one live token per account.
type AuthService struct {
	repo        ports.AccountRepository
	hasher      ports.PasswordHasher
	tokens      ports.TokenIssuer
	revocations ports.TokenRevocations
	tokenTTL    time.Duration
	log         zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	revocations ports.TokenRevocations,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	if revocations == nil {
		revocations = noRevocations{}
	}
	return &AuthService{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revocations,
		tokenTTL:    tokenTTL,
		log:         log,
	}
}

// Signup creates an account with the default subscription. An existing email
// fails with ErrAccountExists before any hashing happens.
func (s *AuthService) Signup(ctx context.Context, email, password string) (*domain.Account, error) {
	if email == "" {
		return nil, domain.MissingField("email")
	}
	if password == "" {
		return nil, domain.MissingField("password")
	}
	if len(password) > domain.MaxPasswordBytes {
		return nil, domain.ErrPasswordTooLong
	}

	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrAccountExists
	case !errors.Is(err, domain.ErrAccountNotFound):
		return nil, fmt.Errorf("signup: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("signup: hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Account{
		Email:        email,
		PasswordHash: hash,
		Subscription: domain.DefaultSubscription,
		AvatarURL:    GravatarURL(email),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// The unique index catches a concurrent signup for the same email.
		if errors.Is(err, domain.ErrAccountExists) {
			return nil, err
		}
		return nil, fmt.Errorf("signup: %w", err)
	}

	s.log.Info().Str("account_id", created.ID).Msg("account created")
	return created, nil
}

// Login verifies the credentials and replaces the account's token with a
// freshly issued one. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if email == "" {
		return nil, domain.MissingField("email")
	}
	if password == "" {
		return nil, domain.MissingField("password")
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.hasher.Verify(password, s.timingHash())
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	previous, err := s.repo.ReplaceToken(ctx, account.ID, token)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: store token: %w", err)
	}
	s.revoke(ctx, account.ID, previous)

	account.Token = token
	s.log.Info().Str("account_id", account.ID).Bool("superseded", previous != "").Msg("login succeeded")

	return &ports.LoginResult{Token: token, Account: account}, nil
}

// Logout clears the live token of an already authenticated account.
func (s *AuthService) Logout(ctx context.Context, accountID string) error {
	previous, err := s.repo.ReplaceToken(ctx, accountID, "")
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrUnauthorized
		}
		return fmt.Errorf("logout: %w", err)
	}
	s.revoke(ctx, accountID, previous)

	s.log.Info().Str("account_id", accountID).Msg("logout")
	return nil
}

// Authenticate accepts a token only while it is cryptographically valid,
// unexpired and byte-identical to the token stored on its account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Account, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	revoked, err := s.revocations.IsRevoked(ctx, token)
	if err != nil {
		s.log.Warn().Err(err).Str("account_id", claims.AccountID).Msg("revocation lookup failed, falling back to store")
	} else if revoked {
		return nil, domain.ErrUnauthorized
	}

	account, err := s.repo.FindByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(account.Token), []byte(token)) != 1 {
		return nil, domain.ErrUnauthorized
	}
	return account, nil
}

func (s *AuthService) revoke(ctx context.Context, accountID, token string) {
	if token == "" {
		return
	}
	if err := s.revocations.Revoke(ctx, token, s.tokenTTL); err != nil {
		s.log.Warn().Err(err).Str("account_id", accountID).Msg("failed to record revoked token")
	}
}

func (s *AuthService) timingHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(timingPassword)
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to prepare timing hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

type noRevocations struct{}

func (noRevocations) Revoke(context.Context, string, time.Duration) error { return nil }

func (noRevocations) IsRevoked(context.Context, string) (bool, error) { return false, nil }
