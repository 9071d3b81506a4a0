package models

import (
	"time"

	"github.com/google/uuid"
)

// Credential represents one stored provider API key. The key material is
// encrypted at rest; only the pool's crypto layer sees plaintext.
type Credential struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Label         string     `json:"label" db:"label"`
	EncryptedKey  string     `json:"-" db:"encrypted_key"`
	Active        bool       `json:"active" db:"active"`
	UsageCount    int        `json:"usage_count" db:"usage_count"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	CooldownUntil *time.Time `json:"cooldown_until,omitempty" db:"cooldown_until"`
	ErrorCount    int        `json:"error_count" db:"error_count"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	CreatedBy     *string    `json:"created_by,omitempty" db:"created_by"`
}

// InCooldown reports whether the credential is currently cooling down
func (c Credential) InCooldown(now time.Time) bool {
	return c.CooldownUntil != nil && c.CooldownUntil.After(now)
}

// MaskedCredential is the admin-facing view of a credential. The key is
// reduced to its last four characters.
type MaskedCredential struct {
	ID            uuid.UUID  `json:"id"`
	Label         string     `json:"label"`
	MaskedKey     string     `json:"masked_key"`
	Active        bool       `json:"active"`
	UsageCount    int        `json:"usage_count"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty"`
	CooldownUntil *time.Time `json:"cooldown_until,omitempty"`
	ErrorCount    int        `json:"error_count"`
	CreatedAt     time.Time  `json:"created_at"`
}
