package app

import (
	"context"
	"encoding/json"
	"time"

	"postureai/ai"
	"postureai/domain/intake"
	"postureai/internal"
	"postureai/internal/config"
	"postureai/models"
	"postureai/ports"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// intakeMaxAttempts allows one retry on a transient failure
const intakeMaxAttempts = 2

// intakeTemperature keeps section selection close to deterministic
const intakeTemperature = 0.2

// IntakeResult is the final section selection for one questionnaire run
type IntakeResult struct {
	SessionID    uuid.UUID
	Profile      intake.UserProfile
	Set          intake.RecommendationSet
	UsedFallback bool
}

// IntakeService turns discovery questionnaire answers into a guardrailed,
// budget-trimmed set of assessment sections.
type IntakeService struct {
	cfg       config.AIConfig
	runner    *ai.Runner
	catalogue intake.Catalogue
	sessions  ports.IntakeRepository
	log       *internal.Logger
}

func NewIntakeService(cfg config.AIConfig, runner *ai.Runner, catalogue intake.Catalogue, sessions ports.IntakeRepository, log *internal.Logger) *IntakeService {
	return &IntakeService{
		cfg:       cfg,
		runner:    runner,
		catalogue: catalogue,
		sessions:  sessions,
		log:       log.Component("Intake"),
	}
}

// Recommend maps answers to a profile, asks the model for a section
// selection, falls back deterministically on failure, then applies
// guardrails and the time-budget trim. The session is always persisted.
func (s *IntakeService) Recommend(ctx context.Context, answers intake.Answers, userID *uuid.UUID) (*IntakeResult, error) {
	profile := intake.NewProfile(answers)

	set, rawResponse, usedFallback := s.selectSections(ctx, profile)

	set = intake.ApplyGuardrails(set, profile, s.catalogue)
	set = intake.TrimToBudget(set, profile.TimePreference)

	result := &IntakeResult{
		SessionID:    uuid.New(),
		Profile:      profile,
		Set:          set,
		UsedFallback: usedFallback,
	}

	if err := s.persistSession(ctx, result, userID, rawResponse); err != nil {
		// The recommendation is still usable; losing the audit row is not
		// worth failing the questionnaire.
		s.log.Error("failed to persist intake session: %v", err)
	}

	return result, nil
}

func (s *IntakeService) selectSections(ctx context.Context, profile intake.UserProfile) (intake.RecommendationSet, string, bool) {
	userMsg, err := ai.IntakeUserMessage(profile, s.catalogue)
	if err != nil {
		s.log.Error("failed to build intake prompt, using fallback: %v", err)
		return intake.Fallback(profile, s.catalogue), "", true
	}

	var decoded *intake.RecommendationSet
	spec := ai.CallSpec{
		Model:           s.cfg.IntakeModel,
		SystemMessage:   ai.IntakeSystemMessage,
		UserMessage:     userMsg,
		Temperature:     intakeTemperature,
		MaxTokens:       s.cfg.MaxTokens,
		MaxAttempts:     intakeMaxAttempts,
		DisableFallback: true,
		Validate: func(content string) error {
			set, err := ai.DecodeRecommendationSet(content)
			if err != nil {
				return err
			}
			decoded = set
			return nil
		},
	}

	out, err := s.runner.Run(ctx, spec)
	if err != nil || decoded == nil {
		s.log.Warn("intake model path failed after %d attempts, using deterministic fallback: %v", out.AttemptCount, err)
		return intake.Fallback(profile, s.catalogue), "", true
	}

	s.log.Info("intake model recommended %d sections, excluded %d",
		len(decoded.Recommended), len(decoded.Excluded))
	return *decoded, out.Content, false
}

func (s *IntakeService) persistSession(ctx context.Context, result *IntakeResult, userID *uuid.UUID, rawResponse string) error {
	profileJSON, err := json.Marshal(result.Profile)
	if err != nil {
		return err
	}

	session := &models.IntakeSession{
		ID:                      result.SessionID,
		UserID:                  userID,
		UserProfileJSON:         profileJSON,
		FinalSelectedSectionIDs: pq.StringArray(result.Set.RecommendedIDs()),
		TimePreference:          string(result.Profile.TimePreference),
		UsedFallback:            result.UsedFallback,
		CreatedAt:               time.Now().UTC(),
	}
	if rawResponse != "" {
		if json.Valid([]byte(rawResponse)) {
			session.AIRawResponseJSON = json.RawMessage(rawResponse)
		} else if quoted, err := json.Marshal(rawResponse); err == nil {
			session.AIRawResponseJSON = quoted
		}
	}
	return s.sessions.Insert(ctx, session)
}
