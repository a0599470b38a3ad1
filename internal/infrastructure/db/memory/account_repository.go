// Package memory provides an in-process AccountRepository used by tests and
// local runs without MongoDB.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/99minutos/identity-service/internal/core/domain"
)

type accountKey struct {
	email string
	role  domain.Role
}

// AccountRepository keeps accounts in maps guarded by a mutex. Records are
// copied on the way in and out so callers never share state with the store.
type AccountRepository struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Account
	byKey map[accountKey]string
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:  make(map[string]*domain.Account),
		byKey: make(map[accountKey]string),
	}
}

func (r *AccountRepository) Insert(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := accountKey{email: account.Email, role: account.Role}
	if _, exists := r.byKey[key]; exists {
		return domain.ErrAccountExists
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	r.byID[account.ID] = clone(account)
	r.byKey[key] = account.ID
	return nil
}

func (r *AccountRepository) FindByEmailAndRole(_ context.Context, email string, role domain.Role) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[accountKey{email: email, role: role}]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var first *domain.Account
	for _, a := range r.byID {
		if a.Email != email {
			continue
		}
		if first == nil || a.CreatedAt.Before(first.CreatedAt) ||
			(a.CreatedAt.Equal(first.CreatedAt) && a.ID < first.ID) {
			first = a
		}
	}
	if first == nil {
		return nil, domain.ErrAccountNotFound
	}
	return clone(first), nil
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return clone(a), nil
}

// Update replaces the stored record. Email and role form the identity key and
// are kept from the stored copy.
func (r *AccountRepository) Update(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[account.ID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	next := clone(account)
	next.Email = stored.Email
	next.Role = stored.Role
	next.CreatedAt = stored.CreatedAt
	r.byID[account.ID] = next
	return nil
}

func (r *AccountRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.byKey, accountKey{email: a.Email, role: a.Role})
	delete(r.byID, id)
	return nil
}

func (r *AccountRepository) List(_ context.Context) ([]*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Profile, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a.Profile())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func clone(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.OTPExpiresAt != nil {
		exp := *a.OTPExpiresAt
		c.OTPExpiresAt = &exp
	}
	return &c
}
