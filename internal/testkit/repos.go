package testkit

import (
	"context"
	"sort"
	"sync"
	"time"

	"postureai/domain/core"
	"postureai/models"
	"postureai/ports"

	"github.com/google/uuid"
)

// InMemoryCacheRepo implements ports.CacheRepository with map storage
type InMemoryCacheRepo struct {
	mu      sync.Mutex
	entries map[ports.CacheKey]*models.SectionCacheEntry

	Lookups int
	Stores  int
}

func NewInMemoryCacheRepo() *InMemoryCacheRepo {
	return &InMemoryCacheRepo{entries: make(map[ports.CacheKey]*models.SectionCacheEntry)}
}

func keyOf(e *models.SectionCacheEntry) ports.CacheKey {
	return ports.CacheKey{
		SectionID:     e.SectionID,
		AnswersHash:   e.AnswersHash,
		PromptVersion: e.PromptVersion,
		Model:         e.Model,
	}
}

func (r *InMemoryCacheRepo) Lookup(_ context.Context, key ports.CacheKey) (*models.SectionCacheEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lookups++
	entry, ok := r.entries[key]
	if !ok {
		return nil, core.ErrCacheMiss
	}
	entry.HitCount++
	entry.LastUsedAt = time.Now().UTC()
	copied := *entry
	return &copied, nil
}

func (r *InMemoryCacheRepo) Store(_ context.Context, entry *models.SectionCacheEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Stores++
	key := keyOf(entry)
	if _, exists := r.entries[key]; exists {
		// Matches ON CONFLICT DO NOTHING semantics
		return nil
	}
	copied := *entry
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now().UTC()
	}
	r.entries[key] = &copied
	return nil
}

func (r *InMemoryCacheRepo) PruneByPromptVersion(_ context.Context, promptVersion string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for key := range r.entries {
		if key.PromptVersion != promptVersion {
			delete(r.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (r *InMemoryCacheRepo) Stats(_ context.Context) (*models.CacheStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &models.CacheStats{}
	for _, e := range r.entries {
		stats.TotalEntries++
		stats.TotalHits += e.HitCount
		stats.TotalCostUSD += e.TotalCostUSD
	}
	return stats, nil
}

// InMemoryArtifactRepo implements ports.ArtifactRepository
type InMemoryArtifactRepo struct {
	mu        sync.Mutex
	sections  map[uuid.UUID]map[string]*models.SectionArtifactRow
	syntheses map[uuid.UUID]*models.SynthesisArtifactRow
}

func NewInMemoryArtifactRepo() *InMemoryArtifactRepo {
	return &InMemoryArtifactRepo{
		sections:  make(map[uuid.UUID]map[string]*models.SectionArtifactRow),
		syntheses: make(map[uuid.UUID]*models.SynthesisArtifactRow),
	}
}

func (r *InMemoryArtifactRepo) UpsertSection(_ context.Context, row *models.SectionArtifactRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sections[row.ReportID] == nil {
		r.sections[row.ReportID] = make(map[string]*models.SectionArtifactRow)
	}
	copied := *row
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now().UTC()
	}
	r.sections[row.ReportID][row.SectionID] = &copied
	return nil
}

func (r *InMemoryArtifactRepo) GetSection(_ context.Context, reportID uuid.UUID, sectionID string) (*models.SectionArtifactRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.sections[reportID][sectionID]
	if !ok {
		return nil, core.ErrSectionNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *InMemoryArtifactRepo) ListSections(_ context.Context, reportID uuid.UUID) ([]models.SectionArtifactRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.SectionArtifactRow, 0, len(r.sections[reportID]))
	for _, row := range r.sections[reportID] {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SectionID < out[j].SectionID })
	return out, nil
}

func (r *InMemoryArtifactRepo) UpsertSynthesis(_ context.Context, row *models.SynthesisArtifactRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *row
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now().UTC()
	}
	r.syntheses[row.ReportID] = &copied
	return nil
}

func (r *InMemoryArtifactRepo) GetSynthesis(_ context.Context, reportID uuid.UUID) (*models.SynthesisArtifactRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.syntheses[reportID]
	if !ok {
		return nil, core.ErrReportNotFound
	}
	copied := *row
	return &copied, nil
}

// InMemoryMetricsRepo implements ports.MetricsRepository
type InMemoryMetricsRepo struct {
	mu          sync.Mutex
	Generations []models.GenerationMetadata
	daily       map[string]*models.DailyMetrics
}

func NewInMemoryMetricsRepo() *InMemoryMetricsRepo {
	return &InMemoryMetricsRepo{daily: make(map[string]*models.DailyMetrics)}
}

func dayKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

func (r *InMemoryMetricsRepo) RecordGeneration(_ context.Context, meta *models.GenerationMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Generations = append(r.Generations, *meta)
	return nil
}

func (r *InMemoryMetricsRepo) ListGenerationsByDate(_ context.Context, date time.Time) ([]models.GenerationMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.GenerationMetadata
	for _, g := range r.Generations {
		if dayKey(g.CreatedAt) == dayKey(date) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *InMemoryMetricsRepo) ListGenerationsByReport(_ context.Context, reportID uuid.UUID) ([]models.GenerationMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.GenerationMetadata
	for _, g := range r.Generations {
		if g.ReportID == reportID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *InMemoryMetricsRepo) UpsertDaily(_ context.Context, metrics *models.DailyMetrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *metrics
	r.daily[dayKey(metrics.Date)] = &copied
	return nil
}

func (r *InMemoryMetricsRepo) GetDaily(_ context.Context, date time.Time) (*models.DailyMetrics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.daily[dayKey(date)]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *InMemoryMetricsRepo) ListDailyRange(_ context.Context, from, to time.Time) ([]models.DailyMetrics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.DailyMetrics
	for _, row := range r.daily {
		if !row.Date.Before(from) && !row.Date.After(to) {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// InMemoryIntakeRepo implements ports.IntakeRepository
type InMemoryIntakeRepo struct {
	mu       sync.Mutex
	Sessions []models.IntakeSession
}

func NewInMemoryIntakeRepo() *InMemoryIntakeRepo {
	return &InMemoryIntakeRepo{}
}

func (r *InMemoryIntakeRepo) Insert(_ context.Context, session *models.IntakeSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	r.Sessions = append(r.Sessions, *session)
	return nil
}

func (r *InMemoryIntakeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.IntakeSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Sessions {
		if r.Sessions[i].ID == id {
			copied := r.Sessions[i]
			return &copied, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *InMemoryIntakeRepo) ListRecent(_ context.Context, limit int) ([]models.IntakeSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.IntakeSession, len(r.Sessions))
	copy(out, r.Sessions)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
