package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredentialInCooldown(t *testing.T) {
	now := time.Now().UTC()

	c := Credential{}
	assert.False(t, c.InCooldown(now), "nil cooldown should not block")

	past := now.Add(-time.Minute)
	c.CooldownUntil = &past
	assert.False(t, c.InCooldown(now), "elapsed cooldown should not block")

	future := now.Add(time.Minute)
	c.CooldownUntil = &future
	assert.True(t, c.InCooldown(now), "future cooldown should block")
}

func TestCredentialJSONHidesKeyMaterial(t *testing.T) {
	c := Credential{Label: "primary", EncryptedKey: "ciphertext"}

	data, err := json.Marshal(c)
	assert.NoError(t, err)
	assert.NotContains(t, string(data), "ciphertext", "encrypted key must never serialize")
	assert.Contains(t, string(data), "primary")
}

func TestGenerationMetadataCacheHitShape(t *testing.T) {
	meta := GenerationMetadata{FinishReason: "cache_hit", CacheHit: true}

	data, err := json.Marshal(meta)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "cache_hit", decoded["finish_reason"])
	assert.Equal(t, true, decoded["cache_hit"])
}
