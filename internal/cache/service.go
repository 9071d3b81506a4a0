package cache

import (
	"context"
	"encoding/json"

	"postureai/domain/artifact"
	"postureai/domain/core"
	"postureai/internal"
	"postureai/models"
	"postureai/ports"

	"github.com/google/uuid"
)

// Hit is a cache lookup result with its stored accounting
type Hit struct {
	Artifact         artifact.SectionArtifact
	TokensPrompt     int
	TokensCompletion int
	TotalCostUSD     float64
	HitCount         int
}

// Service fronts the cache repository with fingerprint-keyed lookups
type Service struct {
	repo ports.CacheRepository
	log  *internal.Logger
}

// NewService creates the cache service
func NewService(repo ports.CacheRepository, log *internal.Logger) *Service {
	return &Service{repo: repo, log: log.Component("Cache")}
}

// Lookup returns the cached artifact for the key, or core.ErrCacheMiss.
// A hit bumps the entry's hit_count and last_used_at through the repository.
func (s *Service) Lookup(ctx context.Context, sectionID string, fp core.Fingerprint, promptVersion, model string) (*Hit, error) {
	entry, err := s.repo.Lookup(ctx, ports.CacheKey{
		SectionID:     sectionID,
		AnswersHash:   fp.String(),
		PromptVersion: promptVersion,
		Model:         model,
	})
	if err != nil {
		if core.IsNotFoundError(err) {
			s.log.Info("cache MISS for section %s", sectionID)
		}
		return nil, err
	}

	var art artifact.SectionArtifact
	if err := json.Unmarshal(entry.ArtifactJSON, &art); err != nil {
		// A corrupt entry behaves like a miss
		s.log.Warn("cache entry for section %s is unreadable: %v", sectionID, err)
		return nil, core.ErrCacheMiss
	}

	s.log.Info("cache HIT for section %s (hits: %d)", sectionID, entry.HitCount)
	return &Hit{
		Artifact:         art,
		TokensPrompt:     entry.TokensPrompt,
		TokensCompletion: entry.TokensCompletion,
		TotalCostUSD:     entry.TotalCostUSD,
		HitCount:         entry.HitCount,
	}, nil
}

// Store persists a freshly generated artifact. Degraded artifacts are never
// cached; persistence errors are swallowed so the call path still succeeds.
func (s *Service) Store(ctx context.Context, sectionID string, fp core.Fingerprint, promptVersion, schemaVersion, model string, art artifact.SectionArtifact, tokensPrompt, tokensCompletion int, costUSD float64) {
	if art.IsDegraded() {
		s.log.Debug("skipping cache store of degraded artifact for section %s", sectionID)
		return
	}

	payload, err := json.Marshal(art)
	if err != nil {
		s.log.Warn("failed to encode artifact for section %s: %v", sectionID, err)
		return
	}

	entry := &models.SectionCacheEntry{
		ID:               uuid.New(),
		SectionID:        sectionID,
		AnswersHash:      fp.String(),
		PromptVersion:    promptVersion,
		SchemaVersion:    schemaVersion,
		Model:            model,
		ArtifactJSON:     payload,
		TokensPrompt:     tokensPrompt,
		TokensCompletion: tokensCompletion,
		TotalCostUSD:     costUSD,
	}
	if err := s.repo.Store(ctx, entry); err != nil {
		s.log.Warn("failed to cache artifact for section %s: %v", sectionID, err)
		return
	}
	s.log.Info("cached artifact for section %s", sectionID)
}

// Stats returns entry count, accumulated hits and estimated cost saved
func (s *Service) Stats(ctx context.Context) (*models.CacheStats, error) {
	return s.repo.Stats(ctx)
}

// Prune removes entries for a retired prompt version. Administrative only.
func (s *Service) Prune(ctx context.Context, promptVersion string) (int64, error) {
	removed, err := s.repo.PruneByPromptVersion(ctx, promptVersion)
	if err != nil {
		return 0, err
	}
	s.log.Info("pruned %d cache entries for prompt version %s", removed, promptVersion)
	return removed, nil
}
