package keypool

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sort"
	"testing"
	"time"

	"postureai/domain/core"
	"postureai/internal"
	"postureai/internal/config"
	"postureai/models"

	"github.com/google/uuid"
)

// memCredentialRepo mimics the SQL selection order in memory
type memCredentialRepo struct {
	creds map[uuid.UUID]*models.Credential
}

func newMemCredentialRepo() *memCredentialRepo {
	return &memCredentialRepo{creds: make(map[uuid.UUID]*models.Credential)}
}

func (r *memCredentialRepo) Insert(_ context.Context, cred *models.Credential) error {
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now().UTC()
	}
	copied := *cred
	r.creds[cred.ID] = &copied
	return nil
}

func (r *memCredentialRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Credential, error) {
	cred, ok := r.creds[id]
	if !ok {
		return nil, core.ErrCredentialNotFound
	}
	copied := *cred
	return &copied, nil
}

func (r *memCredentialRepo) List(_ context.Context) ([]models.Credential, error) {
	out := make([]models.Credential, 0, len(r.creds))
	for _, c := range r.creds {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memCredentialRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
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

func (r *memCredentialRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.creds[id]; !ok {
		return core.ErrCredentialNotFound
	}
	delete(r.creds, id)
	return nil
}

func (r *memCredentialRepo) AcquireNext(_ context.Context, now time.Time) (*models.Credential, error) {
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

func (r *memCredentialRepo) RecordSuccess(_ context.Context, id uuid.UUID) error {
	cred, ok := r.creds[id]
	if !ok {
		return core.ErrCredentialNotFound
	}
	cred.ErrorCount = 0
	cred.CooldownUntil = nil
	return nil
}

func (r *memCredentialRepo) RecordFailure(_ context.Context, id uuid.UUID, cooldownUntil *time.Time, deactivateAfter int) error {
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

func testCipher(t *testing.T) *Cipher {
	t.Helper()
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		t.Fatal(err)
	}
	cipher, err := LoadCipher(base64.StdEncoding.EncodeToString(raw), "")
	if err != nil {
		t.Fatalf("failed to build cipher: %v", err)
	}
	return cipher
}

func testPool(t *testing.T, repo *memCredentialRepo) *Pool {
	t.Helper()
	cfg := config.PoolConfig{
		PerKeyQPS:           1000,
		CooldownCapMinutes:  60,
		DeactivateThreshold: 5,
	}
	return NewPool(repo, testCipher(t), cfg, internal.NewLogger(internal.LogLevelError))
}

func TestCipherRoundTrip(t *testing.T) {
	cipher := testCipher(t)
	token, err := cipher.Encrypt("sk-test-abcdef123456")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if token == "sk-test-abcdef123456" {
		t.Fatal("ciphertext equals plaintext")
	}
	plain, err := cipher.Decrypt(token)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if plain != "sk-test-abcdef123456" {
		t.Errorf("round trip gave %q", plain)
	}
}

func TestLoadCipherMissingKey(t *testing.T) {
	if _, err := LoadCipher("", ""); err == nil {
		t.Fatal("expected error for missing encryption key")
	}
}

func TestMaskKey(t *testing.T) {
	cases := []struct{ in, want string }{
		{"sk-proj-abcdefgh1234", "sk-...1234"},
		{"plainkey9876", "...9876"},
		{"short", "****"},
		{"", "****"},
	}
	for _, tc := range cases {
		if got := MaskKey(tc.in); got != tc.want {
			t.Errorf("MaskKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAcquireFairRotation(t *testing.T) {
	ctx := context.Background()
	repo := newMemCredentialRepo()
	pool := testPool(t, repo)

	ids := make(map[uuid.UUID]string)
	for _, label := range []string{"key-a", "key-b", "key-c"} {
		cred, err := pool.Add(ctx, label, "sk-"+label+"-0000", "admin@test.com")
		if err != nil {
			t.Fatalf("add %s: %v", label, err)
		}
		ids[cred.ID] = label
	}

	counts := make(map[uuid.UUID]int)
	for i := 0; i < 9; i++ {
		acq, err := pool.Acquire(ctx)
		if err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
		counts[acq.ID]++
		if err := pool.RecordSuccess(ctx, acq.ID); err != nil {
			t.Fatal(err)
		}
		// LastUsedAt resolution is coarse in tests, keep selections ordered
		repo.creds[acq.ID].LastUsedAt = ptrTime(time.Now().UTC().Add(time.Duration(i) * time.Millisecond))
	}

	for id, label := range ids {
		if counts[id] < 3 {
			t.Errorf("credential %s selected %d times, want at least 3", label, counts[id])
		}
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestAcquireSkipsCooldown(t *testing.T) {
	ctx := context.Background()
	repo := newMemCredentialRepo()
	pool := testPool(t, repo)

	a, err := pool.Add(ctx, "key-a", "sk-aaaa00001111", "")
	if err != nil {
		t.Fatal(err)
	}
	b, err := pool.Add(ctx, "key-b", "sk-bbbb00002222", "")
	if err != nil {
		t.Fatal(err)
	}

	// Two simulated 429s on key A
	if err := pool.RecordFailure(ctx, a.ID, core.ErrRateLimited); err != nil {
		t.Fatal(err)
	}
	if err := pool.RecordFailure(ctx, a.ID, core.ErrRateLimited); err != nil {
		t.Fatal(err)
	}

	credA, _ := repo.GetByID(ctx, a.ID)
	if credA.CooldownUntil == nil {
		t.Fatal("cooldown not set after rate limit failures")
	}
	// Second failure means error_count=2, cooldown 2^2=4 minutes
	wantMin := time.Now().UTC().Add(3 * time.Minute)
	wantMax := time.Now().UTC().Add(5 * time.Minute)
	if credA.CooldownUntil.Before(wantMin) || credA.CooldownUntil.After(wantMax) {
		t.Errorf("cooldown %v outside expected window", credA.CooldownUntil)
	}

	for i := 0; i < 4; i++ {
		acq, err := pool.Acquire(ctx)
		if err != nil {
			t.Fatalf("acquire: %v", err)
		}
		if acq.ID == a.ID {
			t.Fatal("cooling-down credential was selected")
		}
		if acq.ID != b.ID {
			t.Fatalf("unexpected credential %s", acq.ID)
		}
	}
}

func TestAcquireExhaustedPool(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t, newMemCredentialRepo())

	if _, err := pool.Acquire(ctx); err != core.ErrNoCredentialAvailable {
		t.Errorf("empty pool error = %v, want ErrNoCredentialAvailable", err)
	}
}

func TestRecordFailureDeactivatesAtThreshold(t *testing.T) {
	ctx := context.Background()
	repo := newMemCredentialRepo()
	pool := testPool(t, repo)

	cred, err := pool.Add(ctx, "key-a", "sk-aaaa00001111", "")
	if err != nil {
		t.Fatal(err)
	}

	authErr := errors.New("401 unauthorized")
	for i := 0; i < 5; i++ {
		if err := pool.RecordFailure(ctx, cred.ID, authErr); err != nil {
			t.Fatal(err)
		}
	}

	got, _ := repo.GetByID(ctx, cred.ID)
	if got.Active {
		t.Error("credential still active after hitting error threshold")
	}
	if got.ErrorCount != 5 {
		t.Errorf("error count = %d, want 5", got.ErrorCount)
	}
}

func TestRecordSuccessResetsErrorState(t *testing.T) {
	ctx := context.Background()
	repo := newMemCredentialRepo()
	pool := testPool(t, repo)

	cred, err := pool.Add(ctx, "key-a", "sk-aaaa00001111", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := pool.RecordFailure(ctx, cred.ID, core.ErrRateLimited); err != nil {
		t.Fatal(err)
	}
	if err := pool.RecordSuccess(ctx, cred.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := repo.GetByID(ctx, cred.ID)
	if got.ErrorCount != 0 || got.CooldownUntil != nil {
		t.Errorf("error state not reset: count=%d cooldown=%v", got.ErrorCount, got.CooldownUntil)
	}
}

func TestListMasksKeys(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t, newMemCredentialRepo())

	if _, err := pool.Add(ctx, "key-a", "sk-proj-abcd1234wxyz", ""); err != nil {
		t.Fatal(err)
	}
	masked, err := pool.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(masked) != 1 {
		t.Fatalf("listed %d credentials, want 1", len(masked))
	}
	if masked[0].MaskedKey != "sk-...wxyz" {
		t.Errorf("masked key = %q", masked[0].MaskedKey)
	}
}
