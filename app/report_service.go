// Package app wires the domain pipeline: scoring, cache, redaction, prompt
// assembly, LLM calls and persistence.
package app

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"postureai/ai"
	"postureai/domain/artifact"
	"postureai/domain/assess"
	"postureai/domain/core"
	"postureai/internal"
	"postureai/internal/benchmark"
	"postureai/internal/cache"
	"postureai/internal/config"
	"postureai/internal/metrics"
	"postureai/internal/redact"
	"postureai/models"
	"postureai/ports"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// ReportRequest carries everything needed to analyze one report
type ReportRequest struct {
	ReportID  uuid.UUID
	Structure assess.Structure
	Responses map[core.QuestionID]assess.Response

	// SectionIDs limits the pipeline to the intake selection. Empty means
	// every section in the structure.
	SectionIDs []core.SectionID
}

// SectionResult is one section's terminal pipeline outcome
type SectionResult struct {
	SectionID string
	Title     string
	Artifact  artifact.SectionArtifact
	CacheHit  bool
	Degraded  bool
}

// ReportResult is the full analysis output for one report
type ReportResult struct {
	ReportID          uuid.UUID
	Scores            assess.Scores
	BlindSpots        assess.BlindSpotDigest
	Sections          []SectionResult
	Synthesis         artifact.SynthesisArtifact
	SynthesisDegraded bool
}

// ReportService runs the per-section analysis pipeline and the synthesis
// stage for a report.
type ReportService struct {
	cfg       config.Config
	runner    *ai.Runner
	cache     *cache.Service
	redactor  *redact.Redactor
	bench     *benchmark.Service
	artifacts ports.ArtifactRepository
	metrics   *metrics.Service
	log       *internal.Logger
}

func NewReportService(
	cfg config.Config,
	runner *ai.Runner,
	cacheSvc *cache.Service,
	redactor *redact.Redactor,
	bench *benchmark.Service,
	artifacts ports.ArtifactRepository,
	metricsSvc *metrics.Service,
	log *internal.Logger,
) *ReportService {
	return &ReportService{
		cfg:       cfg,
		runner:    runner,
		cache:     cacheSvc,
		redactor:  redactor,
		bench:     bench,
		artifacts: artifacts,
		metrics:   metricsSvc,
		log:       log.Component("ReportService"),
	}
}

func (s *ReportService) promptOptions() ai.PromptOptions {
	return ai.PromptOptions{
		IncludeComments: s.cfg.AI.IncludeComments,
		IncludeContext:  s.cfg.AI.IncludeContext,
		CommentMaxChars: s.cfg.AI.CommentMaxChars,
		ContextMaxChars: s.cfg.AI.ContextMaxChars,
	}
}

// Generate scores the report, fans the in-scope sections out through the
// analysis pipeline, then runs the synthesis stage. Section degradation
// never aborts the report.
func (s *ReportService) Generate(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	structure := req.Structure
	if len(req.SectionIDs) > 0 {
		structure = structure.FilterBySections(req.SectionIDs)
	}

	scores := assess.CalculateScores(structure, req.Responses)

	s.log.Info("starting report %s: %d sections, overall %.1f%%",
		req.ReportID, len(structure.Sections), scores.Overall.Percentage)

	var redactionWarning sync.Once

	sem := semaphore.NewWeighted(int64(s.cfg.AI.MaxConcurrentSections))
	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make([]SectionResult, 0, len(structure.Sections))

	for _, section := range structure.Sections {
		input := assess.BuildSectionInput(section, req.Responses)
		if len(input.Items) == 0 {
			s.log.Warn("section %s has no answered questions, skipping", section.ID)
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		wg.Add(1)
		go func(section assess.Section, input assess.SectionInput) {
			defer wg.Done()
			defer sem.Release(1)

			res := s.processSection(ctx, req.ReportID, section, input, &redactionWarning)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(section, input)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].SectionID < results[j].SectionID })

	synthesis, degraded := s.runSynthesis(ctx, req.ReportID, structure, scores, results)

	return &ReportResult{
		ReportID:          req.ReportID,
		Scores:            scores,
		BlindSpots:        assess.ComputeBlindSpots(structure, req.Responses),
		Sections:          results,
		Synthesis:         synthesis,
		SynthesisDegraded: degraded,
	}, nil
}

func (s *ReportService) processSection(ctx context.Context, reportID uuid.UUID, section assess.Section, input assess.SectionInput, redactionWarning *sync.Once) SectionResult {
	sectionID := section.ID.String()
	fp := cache.Fingerprint(input.Items)

	if hit, err := s.cache.Lookup(ctx, sectionID, fp, s.cfg.AI.PromptVersion, s.cfg.AI.DefaultModel); err == nil {
		s.persistSection(ctx, reportID, sectionID, hit.Artifact)
		s.recordCacheHit(ctx, reportID, sectionID)
		return SectionResult{SectionID: sectionID, Title: section.Title, Artifact: hit.Artifact, CacheHit: true}
	}

	items := input.Items
	if s.redactor.Enabled() {
		var redactions int
		items, redactions = s.redactor.RedactInputs(items)
		if redactions > 0 {
			s.log.Debug("redacted %d PII matches in section %s", redactions, sectionID)
		}
	} else {
		redactionWarning.Do(func() {
			s.log.Warn("PII redaction is disabled; prompts for report %s carry raw answer text", reportID)
		})
	}

	contextBlock := s.bench.ContextBlock(section.Title, section.Description, s.cfg.AI.MaxBenchmarkControls)
	prompt := ai.SectionPrompt(section, items, contextBlock, s.promptOptions())

	art, out := s.runner.GenerateSection(ctx, section.Title, "", prompt, len(items))

	if !out.Degraded {
		s.cache.Store(ctx, sectionID, fp, s.cfg.AI.PromptVersion, s.cfg.AI.SchemaVersion,
			s.cfg.AI.DefaultModel, *art, out.TokensPrompt, out.TokensCompletion, out.CostUSD)
	}

	s.persistSection(ctx, reportID, sectionID, *art)
	s.recordOutcome(ctx, reportID, &sectionID, s.cfg.AI.Temperature, s.cfg.AI.MaxTokens, out)

	return SectionResult{
		SectionID: sectionID,
		Title:     section.Title,
		Artifact:  *art,
		Degraded:  out.Degraded,
	}
}

func (s *ReportService) runSynthesis(ctx context.Context, reportID uuid.UUID, structure assess.Structure, scores assess.Scores, sections []SectionResult) (artifact.SynthesisArtifact, bool) {
	summaries := make([]ai.SectionSummary, 0, len(sections))
	for _, res := range sections {
		pct := scores.Sections[core.SectionID(res.SectionID)].Percentage
		summaries = append(summaries, ai.SectionSummary{
			Title:              res.Title,
			ScorePercent:       pct,
			RiskLevel:          string(res.Artifact.RiskLevel),
			TopGaps:            gapTexts(res.Artifact.Gaps),
			TopRecommendations: recommendationActions(res.Artifact.Recommendations),
			Degraded:           res.Degraded,
		})
	}

	prompt := ai.SynthesisPrompt(summaries, scores.Overall.Percentage, "")

	synthesis, out, err := s.runner.GenerateSynthesis(ctx, "", prompt)
	if err != nil {
		s.log.Error("synthesis failed for report %s, emitting minimal synthesis: %v", reportID, err)
		minimal := artifact.NewMinimalSynthesis(scores.Overall.Percentage, len(sections))
		s.persistSynthesis(ctx, reportID, minimal)
		if out != nil {
			s.recordOutcome(ctx, reportID, nil, s.cfg.AI.SynthesisTemperature, s.cfg.AI.SynthesisMaxTokens, out)
		}
		return minimal, true
	}

	s.persistSynthesis(ctx, reportID, *synthesis)
	s.recordOutcome(ctx, reportID, nil, s.cfg.AI.SynthesisTemperature, s.cfg.AI.SynthesisMaxTokens, out)
	return *synthesis, false
}

// persistSection tolerates storage failures: the artifact still returns to
// the caller and degradation shows up in logs and metrics.
func (s *ReportService) persistSection(ctx context.Context, reportID uuid.UUID, sectionID string, art artifact.SectionArtifact) {
	raw, err := json.Marshal(art)
	if err != nil {
		s.log.Error("failed to marshal section %s artifact: %v", sectionID, err)
		return
	}
	row := &models.SectionArtifactRow{
		ID:           uuid.New(),
		ReportID:     reportID,
		SectionID:    sectionID,
		ArtifactJSON: raw,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.artifacts.UpsertSection(ctx, row); err != nil {
		s.log.Error("failed to persist section %s artifact: %v", sectionID, err)
	}
}

func (s *ReportService) persistSynthesis(ctx context.Context, reportID uuid.UUID, art artifact.SynthesisArtifact) {
	raw, err := json.Marshal(art)
	if err != nil {
		s.log.Error("failed to marshal synthesis artifact: %v", err)
		return
	}
	row := &models.SynthesisArtifactRow{
		ID:            uuid.New(),
		ReportID:      reportID,
		ArtifactJSON:  raw,
		PromptVersion: s.cfg.AI.PromptVersion,
		SchemaVersion: artifact.SynthesisSchemaVersion,
		Model:         s.cfg.AI.DefaultModel,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.artifacts.UpsertSynthesis(ctx, row); err != nil {
		s.log.Error("failed to persist synthesis artifact: %v", err)
	}
}

func (s *ReportService) recordOutcome(ctx context.Context, reportID uuid.UUID, sectionID *string, temperature float64, maxTokens int, out *ai.Outcome) {
	meta := &models.GenerationMetadata{
		ReportID:         reportID,
		SectionID:        sectionID,
		PromptVersion:    s.cfg.AI.PromptVersion,
		SchemaVersion:    s.cfg.AI.SchemaVersion,
		Model:            out.Model,
		Temperature:      temperature,
		MaxTokens:        maxTokens,
		TokensPrompt:     out.TokensPrompt,
		TokensCompletion: out.TokensCompletion,
		TotalCostUSD:     out.CostUSD,
		LatencyMs:        out.LatencyMs,
		FinishReason:     out.FinishReason,
		AttemptCount:     out.AttemptCount,
		IsDegraded:       out.Degraded,
		ErrorCode:        out.ErrorCode,
		ErrorMessage:     out.ErrorMessage,
		FallbackModel:    out.FallbackModel,
	}
	if err := s.metrics.Record(ctx, meta); err != nil {
		s.log.Warn("failed to record generation metadata: %v", err)
	}
}

// recordCacheHit writes a zero-token metadata row so hit rates are
// computable from the same table as generations.
func (s *ReportService) recordCacheHit(ctx context.Context, reportID uuid.UUID, sectionID string) {
	meta := &models.GenerationMetadata{
		ReportID:      reportID,
		SectionID:     &sectionID,
		PromptVersion: s.cfg.AI.PromptVersion,
		SchemaVersion: s.cfg.AI.SchemaVersion,
		Model:         s.cfg.AI.DefaultModel,
		FinishReason:  "cache_hit",
		AttemptCount:  0,
		CacheHit:      true,
	}
	if err := s.metrics.Record(ctx, meta); err != nil {
		s.log.Warn("failed to record cache hit metadata: %v", err)
	}
}

func gapTexts(gaps []artifact.Gap) []string {
	out := make([]string, 0, len(gaps))
	for _, g := range gaps {
		out = append(out, g.Gap)
	}
	return out
}

func recommendationActions(recs []artifact.Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Action)
	}
	return out
}
