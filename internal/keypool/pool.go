// Package keypool manages the provider credential pool: encrypted storage,
// least-recently-used rotation, cooldowns and rate caps.
package keypool

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"postureai/domain/core"
	"postureai/internal"
	"postureai/internal/config"
	"postureai/internal/errors"
	"postureai/models"
	"postureai/ports"

	"github.com/google/uuid"
)

// Acquired is a leased credential with its decrypted key material
type Acquired struct {
	ID     uuid.UUID
	Label  string
	APIKey string
}

// TestResult is the outcome of a live key probe
type TestResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// Pool coordinates credential selection. Selection state lives in the
// relational store; only the per-credential rate limiters are in memory.
type Pool struct {
	repo   ports.CredentialRepository
	cipher *Cipher
	cfg    config.PoolConfig
	log    *internal.Logger

	mu       sync.Mutex
	limiters map[uuid.UUID]*rate.Limiter
}

// NewPool creates the credential pool
func NewPool(repo ports.CredentialRepository, cipher *Cipher, cfg config.PoolConfig, log *internal.Logger) *Pool {
	return &Pool{
		repo:     repo,
		cipher:   cipher,
		cfg:      cfg,
		log:      log.Component("KeyPool"),
		limiters: make(map[uuid.UUID]*rate.Limiter),
	}
}

func (p *Pool) limiter(id uuid.UUID) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	lim, ok := p.limiters[id]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(p.cfg.PerKeyQPS), 1)
		p.limiters[id] = lim
	}
	return lim
}

// Add encrypts and stores a new credential
func (p *Pool) Add(ctx context.Context, label, apiKey string, createdBy string) (*models.Credential, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.InvalidInput("api key cannot be empty")
	}
	encrypted, err := p.cipher.Encrypt(apiKey)
	if err != nil {
		return nil, err
	}

	cred := &models.Credential{
		ID:           uuid.New(),
		Label:        label,
		EncryptedKey: encrypted,
		Active:       true,
	}
	if createdBy != "" {
		cred.CreatedBy = &createdBy
	}
	if err := p.repo.Insert(ctx, cred); err != nil {
		return nil, err
	}
	p.log.Info("added credential %q (id %s)", label, cred.ID)
	return cred, nil
}

// List returns all credentials in masked form, newest first
func (p *Pool) List(ctx context.Context) ([]models.MaskedCredential, error) {
	creds, err := p.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.MaskedCredential, 0, len(creds))
	for _, c := range creds {
		masked := "****"
		if plain, err := p.cipher.Decrypt(c.EncryptedKey); err == nil {
			masked = MaskKey(plain)
		}
		out = append(out, models.MaskedCredential{
			ID:            c.ID,
			Label:         c.Label,
			MaskedKey:     masked,
			Active:        c.Active,
			UsageCount:    c.UsageCount,
			LastUsedAt:    c.LastUsedAt,
			CooldownUntil: c.CooldownUntil,
			ErrorCount:    c.ErrorCount,
			CreatedAt:     c.CreatedAt,
		})
	}
	return out, nil
}

// Toggle flips a credential's active flag. Reactivating clears error state
// through the repository update.
func (p *Pool) Toggle(ctx context.Context, id uuid.UUID, active bool) error {
	if err := p.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	state := "inactive"
	if active {
		state = "active"
	}
	p.log.Info("credential %s set %s", id, state)
	return nil
}

// Delete removes a credential permanently
func (p *Pool) Delete(ctx context.Context, id uuid.UUID) error {
	if err := p.repo.Delete(ctx, id); err != nil {
		return err
	}
	p.mu.Lock()
	delete(p.limiters, id)
	p.mu.Unlock()
	p.log.Info("deleted credential %s", id)
	return nil
}

// Acquire selects the least recently used active credential whose cooldown
// has elapsed, waiting for its rate window before returning. The database
// transaction inside AcquireNext makes concurrent acquirers serialize.
func (p *Pool) Acquire(ctx context.Context) (*Acquired, error) {
	cred, err := p.repo.AcquireNext(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := p.limiter(cred.ID).Wait(ctx); err != nil {
		return nil, err
	}

	apiKey, err := p.cipher.Decrypt(cred.EncryptedKey)
	if err != nil {
		return nil, err
	}

	p.log.Info("selected credential %q (usage: %d)", cred.Label, cred.UsageCount)
	return &Acquired{ID: cred.ID, Label: cred.Label, APIKey: apiKey}, nil
}

// RecordSuccess resets a credential's error state
func (p *Pool) RecordSuccess(ctx context.Context, id uuid.UUID) error {
	return p.repo.RecordSuccess(ctx, id)
}

// RecordFailure increments the error count. Rate-limit failures set an
// exponential cooldown of min(2^error_count, cap) minutes; other failures
// deactivate the credential once the error threshold is reached.
func (p *Pool) RecordFailure(ctx context.Context, id uuid.UUID, callErr error) error {
	var cooldownUntil *time.Time
	if isRateLimit(callErr) {
		cred, err := p.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		minutes := 1 << (cred.ErrorCount + 1)
		if minutes > p.cfg.CooldownCapMinutes {
			minutes = p.cfg.CooldownCapMinutes
		}
		until := time.Now().UTC().Add(time.Duration(minutes) * time.Minute)
		cooldownUntil = &until
		p.log.Warn("rate limit on credential %s, cooldown %d minutes", id, minutes)
	}
	return p.repo.RecordFailure(ctx, id, cooldownUntil, p.cfg.DeactivateThreshold)
}

// Test probes a raw API key against the provider with a tiny completion
func (p *Pool) Test(ctx context.Context, client ports.LLMClient, model, apiKey string) TestResult {
	_, err := client.ChatCompletion(ctx, apiKey, ports.ChatRequest{
		Model:       model,
		UserMessage: "test",
		MaxTokens:   5,
	})
	if err == nil {
		return TestResult{Valid: true, Message: "API key is valid"}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "invalid"):
		return TestResult{Valid: false, Message: "API key is invalid or unauthorized"}
	case strings.Contains(msg, "403") || strings.Contains(msg, "model_not_found"):
		return TestResult{Valid: false, Message: "API key is valid but does not have access to model '" + model + "'"}
	case stderrors.Is(err, core.ErrRateLimited) || strings.Contains(msg, "429"):
		return TestResult{Valid: false, Message: "API key is valid but rate limited"}
	default:
		return TestResult{Valid: false, Message: "API key test failed: " + err.Error()}
	}
}

// TestStored decrypts a stored credential and probes it live
func (p *Pool) TestStored(ctx context.Context, client ports.LLMClient, model string, id uuid.UUID) (TestResult, error) {
	cred, err := p.repo.GetByID(ctx, id)
	if err != nil {
		return TestResult{}, err
	}
	apiKey, err := p.cipher.Decrypt(cred.EncryptedKey)
	if err != nil {
		return TestResult{}, err
	}
	return p.Test(ctx, client, model, apiKey), nil
}

// Diagnostics reports whether the encryption key loads and the pool has
// usable credentials.
func (p *Pool) Diagnostics(ctx context.Context) map[string]interface{} {
	out := map[string]interface{}{
		"encryption_key_loaded": p.cipher != nil,
	}
	creds, err := p.repo.List(ctx)
	if err != nil {
		out["store_reachable"] = false
		return out
	}
	out["store_reachable"] = true

	active, coolingDown := 0, 0
	now := time.Now().UTC()
	for _, c := range creds {
		if !c.Active {
			continue
		}
		active++
		if c.InCooldown(now) {
			coolingDown++
		}
	}
	out["total_keys"] = len(creds)
	out["active_keys"] = active
	out["cooling_down"] = coolingDown
	return out
}

func isRateLimit(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, core.ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit")
}
