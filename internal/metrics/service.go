// Package metrics records per-call generation accounting and rolls it up
// into daily totals.
package metrics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"postureai/internal"
	"postureai/internal/errors"
	"postureai/models"
	"postureai/ports"
)

// Service aggregates generation metadata
type Service struct {
	repo ports.MetricsRepository
	log  *internal.Logger
}

// NewService creates the metrics service
func NewService(repo ports.MetricsRepository, log *internal.Logger) *Service {
	return &Service{repo: repo, log: log.Component("Metrics")}
}

// Record persists one call's metadata. Cost is derived from the pricing
// table when the caller has not set it.
func (s *Service) Record(ctx context.Context, meta *models.GenerationMetadata) error {
	if meta.ID == uuid.Nil {
		meta.ID = uuid.New()
	}
	if meta.TotalCostUSD == 0 && !meta.CacheHit {
		meta.TotalCostUSD = CalculateCost(meta.Model, meta.TokensPrompt, meta.TokensCompletion)
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.RecordGeneration(ctx, meta); err != nil {
		return errors.Wrap(err, "failed to record generation metadata")
	}
	return nil
}

// AggregateDaily rolls up one date's rows into a DailyMetrics row and
// upserts it. Defaults to yesterday when date is zero.
func (s *Service) AggregateDaily(ctx context.Context, date time.Time) (*models.DailyMetrics, error) {
	if date.IsZero() {
		date = time.Now().UTC().AddDate(0, 0, -1)
	}
	date = date.Truncate(24 * time.Hour)

	rows, err := s.repo.ListGenerationsByDate(ctx, date)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load generation rows")
	}

	daily := Rollup(date, rows)
	if err := s.repo.UpsertDaily(ctx, daily); err != nil {
		return nil, errors.Wrap(err, "failed to store daily metrics")
	}
	s.log.Info("aggregated %d generation rows for %s", len(rows), date.Format("2006-01-02"))
	return daily, nil
}

// Rollup computes a daily summary from raw generation rows. Cache hit rows
// count toward the hit rate but not toward token or latency totals.
func Rollup(date time.Time, rows []models.GenerationMetadata) *models.DailyMetrics {
	daily := &models.DailyMetrics{Date: date, SuccessRate: 1}

	reports := make(map[uuid.UUID]bool)
	var latencies []float64
	generated, cacheHits, degraded := 0, 0, 0

	for _, row := range rows {
		reports[row.ReportID] = true
		if row.CacheHit {
			cacheHits++
			continue
		}
		generated++
		daily.TotalTokensPrompt += row.TokensPrompt
		daily.TotalTokensCompletion += row.TokensCompletion
		daily.TotalCostUSD += row.TotalCostUSD
		latencies = append(latencies, float64(row.LatencyMs))
		if row.IsDegraded {
			degraded++
		}
	}

	daily.TotalReports = len(reports)
	daily.TotalSections = generated + cacheHits

	if len(latencies) > 0 {
		if mean, err := stats.Mean(latencies); err == nil {
			daily.AvgLatencyMs = mean
		}
		if median, err := stats.Median(latencies); err == nil {
			daily.MedianLatencyMs = median
		}
		if p95, err := stats.Percentile(latencies, 95); err == nil {
			daily.P95LatencyMs = p95
		}
	}

	if generated+cacheHits > 0 {
		daily.CacheHitRate = float64(cacheHits) / float64(generated+cacheHits)
	}
	if generated > 0 {
		daily.DegradedRate = float64(degraded) / float64(generated)
		daily.SuccessRate = 1 - daily.DegradedRate
	}

	return daily
}

// ReportCost builds a per-section cost breakdown for one report
func (s *Service) ReportCost(ctx context.Context, reportID uuid.UUID) (*models.ReportCostBreakdown, error) {
	rows, err := s.repo.ListGenerationsByReport(ctx, reportID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load report generations")
	}

	out := &models.ReportCostBreakdown{ReportID: reportID}
	for _, row := range rows {
		sectionID := ""
		if row.SectionID != nil {
			sectionID = *row.SectionID
		}
		out.TotalCostUSD += row.TotalCostUSD
		out.TokensPrompt += row.TokensPrompt
		out.TokensCompletion += row.TokensCompletion
		if row.CacheHit {
			out.CacheHits++
		}
		if row.IsDegraded {
			out.DegradedSections++
		}
		out.Sections = append(out.Sections, models.SectionCostRow{
			SectionID:        sectionID,
			Model:            row.Model,
			TokensPrompt:     row.TokensPrompt,
			TokensCompletion: row.TokensCompletion,
			CostUSD:          row.TotalCostUSD,
			LatencyMs:        row.LatencyMs,
			CacheHit:         row.CacheHit,
			IsDegraded:       row.IsDegraded,
		})
	}
	return out, nil
}

// DailyRange returns stored daily metrics over [from, to]
func (s *Service) DailyRange(ctx context.Context, from, to time.Time) ([]models.DailyMetrics, error) {
	return s.repo.ListDailyRange(ctx, from, to)
}
