// Package testkit provides in-memory port implementations and artifact
// fixtures shared by tests across the repo.
package testkit

import (
	"context"
	"sort"
	"sync"
	"time"

	"postureai/domain/core"
	"postureai/models"

	"github.com/google/uuid"
)

// InMemoryCredentialRepo mimics the SQL selection order of the postgres
// credential repository in memory.
type InMemoryCredentialRepo struct {
	mu    sync.Mutex
	creds map[uuid.UUID]*models.Credential
}

func NewInMemoryCredentialRepo() *InMemoryCredentialRepo {
	return &InMemoryCredentialRepo{creds: make(map[uuid.UUID]*models.Credential)}
}

func (r *InMemoryCredentialRepo) Insert(_ context.Context, cred *models.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now().UTC()
	}
	copied := *cred
	r.creds[cred.ID] = &copied
	return nil
}

func (r *InMemoryCredentialRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cred, ok := r.creds[id]
	if !ok {
		return nil, core.ErrCredentialNotFound
	}
	copied := *cred
	return &copied, nil
}

func (r *InMemoryCredentialRepo) List(_ context.Context) ([]models.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Credential, 0, len(r.creds))
	for _, c := range r.creds {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryCredentialRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cred, ok := r.creds[id]
	if !ok {
		return core.ErrCredentialNotFound
	}
	cred.Active = active
	if active {
		cred.ErrorCount = 0
		cred.CooldownUntil = nil
	}
	return nil
}

func (r *InMemoryCredentialRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.creds[id]; !ok {
		return core.ErrCredentialNotFound
	}
	delete(r.creds, id)
	return nil
}

func (r *InMemoryCredentialRepo) AcquireNext(_ context.Context, now time.Time) (*models.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var eligible []*models.Credential
	for _, c := range r.creds {
		if c.Active && !c.InCooldown(now) {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return nil, core.ErrNoCredentialAvailable
	}
	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if (a.LastUsedAt == nil) != (b.LastUsedAt == nil) {
			return a.LastUsedAt == nil
		}
		if a.LastUsedAt != nil && b.LastUsedAt != nil && !a.LastUsedAt.Equal(*b.LastUsedAt) {
			return a.LastUsedAt.Before(*b.LastUsedAt)
		}
		if a.UsageCount != b.UsageCount {
			return a.UsageCount < b.UsageCount
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	chosen := eligible[0]
	ts := now
	chosen.LastUsedAt = &ts
	chosen.UsageCount++
	copied := *chosen
	return &copied, nil
}

func (r *InMemoryCredentialRepo) RecordSuccess(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cred, ok := r.creds[id]
	if !ok {
		return core.ErrCredentialNotFound
	}
	cred.ErrorCount = 0
	cred.CooldownUntil = nil
	return nil
}

func (r *InMemoryCredentialRepo) RecordFailure(_ context.Context, id uuid.UUID, cooldownUntil *time.Time, deactivateAfter int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cred, ok := r.creds[id]
	if !ok {
		return core.ErrCredentialNotFound
	}
	cred.ErrorCount++
	if cooldownUntil != nil {
		cred.CooldownUntil = cooldownUntil
	} else if cred.ErrorCount >= deactivateAfter {
		cred.Active = false
	}
	return nil
}
