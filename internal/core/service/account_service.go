package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

// AccountService serves the profile operations of an authenticated account.
type AccountService struct {
	repo    ports.AccountRepository
	avatars ports.AvatarStore
	cleanup ports.CleanupQueue
	log     zerolog.Logger
}

func NewAccountService(repo ports.AccountRepository, avatars ports.AvatarStore, cleanup ports.CleanupQueue, log zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, avatars: avatars, cleanup: cleanup, log: log}
}

func (s *AccountService) Current(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.repo.FindByID(ctx, accountID)
}

// UpdateSubscription sets a new tier. A nil tier means the field was absent
// from the request, which is reported separately from an unknown value.
func (s *AccountService) UpdateSubscription(ctx context.Context, accountID string, tier *string) (domain.Subscription, error) {
	if tier == nil {
		return "", domain.MissingField("subscription")
	}
	sub := domain.Subscription(*tier)
	if !sub.Valid() {
		return "", domain.ErrInvalidSubscription
	}

	updated, err := s.repo.UpdateSubscription(ctx, accountID, sub)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", err
	}

	s.log.Info().Str("account_id", accountID).Str("subscription", string(updated.Subscription)).Msg("subscription updated")
	return updated.Subscription, nil
}

// UpdateAvatar stores the uploaded image and points the account at it. The
// replaced asset is handed to the cleanup queue.
func (s *AccountService) UpdateAvatar(ctx context.Context, accountID string, upload *ports.AvatarUpload) (string, error) {
	if upload == nil || upload.Content == nil {
		return "", domain.ErrMissingFile
	}

	url, err := s.avatars.Save(ctx, accountID, upload.Content)
	if err != nil {
		return "", fmt.Errorf("update avatar: %w", err)
	}

	previous, err := s.repo.ReplaceAvatar(ctx, accountID, url)
	if err != nil {
		if rmErr := s.avatars.Remove(ctx, url); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("account_id", accountID).Msg("failed to discard orphaned avatar")
		}
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", fmt.Errorf("update avatar: %w", err)
	}

	if previous != "" && previous != url && s.cleanup != nil {
		s.cleanup.Enqueue(ports.AvatarCleanup{AccountID: accountID, URL: previous})
	}

	s.log.Info().Str("account_id", accountID).Str("avatar_url", url).Msg("avatar updated")
	return url, nil
}
