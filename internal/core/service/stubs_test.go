package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory account repository (mirrors the Mongo unique index on email)
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.Account
	nextID   int
	findErr  error // if set, lookups return this error
	writeErr error // if set, mutations return this error
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byID: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	for _, existing := range r.byID {
		if existing.Email == a.Email {
			return nil, domain.ErrAccountExists
		}
	}
	r.nextID++
	stored := cloneAccount(a)
	stored.ID = fmt.Sprintf("acc-%d", r.nextID)
	r.byID[stored.ID] = stored
	return cloneAccount(stored), nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, a := range r.byID {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) ReplaceToken(_ context.Context, id, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return "", r.writeErr
	}
	a, ok := r.byID[id]
	if !ok {
		return "", domain.ErrAccountNotFound
	}
	previous := a.Token
	a.Token = token
	return previous, nil
}

func (r *stubAccountRepo) UpdateSubscription(_ context.Context, id string, tier domain.Subscription) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Subscription = tier
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) ReplaceAvatar(_ context.Context, id, url string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return "", r.writeErr
	}
	a, ok := r.byID[id]
	if !ok {
		return "", domain.ErrAccountNotFound
	}
	previous := a.AvatarURL
	a.AvatarURL = url
	return previous, nil
}

func (r *stubAccountRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// ---------------------------------------------------------------------------
// Other collaborators
// ---------------------------------------------------------------------------

// countingHasher records how many hashes were computed.
type countingHasher struct {
	ports.PasswordHasher
	hashes atomic.Int32
}

func (h *countingHasher) Hash(p string) (string, error) {
	h.hashes.Add(1)
	return h.PasswordHasher.Hash(p)
}

type stubRevocations struct {
	mu        sync.Mutex
	revoked   map[string]time.Duration
	lookupErr error
	revokeErr error
}

func newStubRevocations() *stubRevocations {
	return &stubRevocations{revoked: make(map[string]time.Duration)}
}

func (r *stubRevocations) Revoke(_ context.Context, token string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revokeErr != nil {
		return r.revokeErr
	}
	r.revoked[token] = ttl
	return nil
}

func (r *stubRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupErr != nil {
		return false, r.lookupErr
	}
	_, ok := r.revoked[token]
	return ok, nil
}

type stubAvatarStore struct {
	saveErr error
	saved   []string
	removed []string
	seq     int
}

func (s *stubAvatarStore) Save(_ context.Context, accountID string, src io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	if _, err := io.ReadAll(src); err != nil {
		return "", err
	}
	s.seq++
	url := fmt.Sprintf("/avatars/%s-%d.png", accountID, s.seq)
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *stubAvatarStore) Remove(_ context.Context, url string) error {
	s.removed = append(s.removed, url)
	return nil
}

type stubCleanupQueue struct {
	jobs []ports.AvatarCleanup
}

func (q *stubCleanupQueue) Enqueue(job ports.AvatarCleanup) {
	q.jobs = append(q.jobs, job)
}

var errStoreDown = errors.New("store unavailable")
