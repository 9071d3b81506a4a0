package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"postureai/domain/artifact"
	"postureai/domain/core"
	"postureai/internal"
	"postureai/internal/config"
	"postureai/internal/keypool"
	"postureai/internal/metrics"
	"postureai/ports"
)

// retryBackoff spaces retriable attempts apart
const retryBackoff = 500 * time.Millisecond

// CallSpec describes one generation request for the runner.
// MaxAttempts of zero falls back to the configured retry limit.
type CallSpec struct {
	Model           string
	SystemMessage   string
	UserMessage     string
	Temperature     float64
	MaxTokens       int
	MaxAttempts     int
	DisableFallback bool

	// Validate inspects the raw reply. Returning an error marks the
	// attempt retriable; the decoded value is captured by the caller's
	// closure.
	Validate func(content string) error
}

// Outcome is the terminal record of one call chain, accumulated across
// every attempt including the fallback model.
type Outcome struct {
	Content          string
	Model            string
	FinishReason     string
	TokensPrompt     int
	TokensCompletion int
	CostUSD          float64
	LatencyMs        int64
	AttemptCount     int
	FallbackModel    *string
	Degraded         bool
	ErrorCode        *string
	ErrorMessage     *string
}

// Runner executes single-shot JSON-mode completions with credential
// rotation, schema validation, bounded retry and model fallback.
type Runner struct {
	client ports.LLMClient
	pool   *keypool.Pool
	cfg    config.AIConfig
	log    *internal.Logger

	// sleep is swapped out in tests
	sleep func(time.Duration)
}

func NewRunner(client ports.LLMClient, pool *keypool.Pool, cfg config.AIConfig, log *internal.Logger) *Runner {
	return &Runner{
		client: client,
		pool:   pool,
		cfg:    cfg,
		log:    log.Component("Runner"),
		sleep:  time.Sleep,
	}
}

// Run drives the call state machine: attempts on the requested model up
// to the retry limit, then one pass on the fallback model. It returns
// core.ErrDegraded when every attempt fails; the Outcome is always
// populated for metrics.
func (r *Runner) Run(ctx context.Context, spec CallSpec) (*Outcome, error) {
	out := &Outcome{Model: spec.Model}

	maxAttempts := spec.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = r.cfg.MaxRetries
	}

	lastErr := r.attemptModel(ctx, spec, spec.Model, spec.MaxTokens, spec.Temperature, maxAttempts, out)
	if lastErr == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		r.recordFailureOutcome(out, lastErr)
		return out, lastErr
	}

	if !spec.DisableFallback && r.cfg.FallbackModel != "" && r.cfg.FallbackModel != spec.Model {
		r.log.Warn("primary model %s exhausted, falling back to %s: %v", spec.Model, r.cfg.FallbackModel, lastErr)
		fb := r.cfg.FallbackModel
		out.FallbackModel = &fb
		lastErr = r.attemptModel(ctx, spec, fb, r.cfg.FallbackMaxTokens, r.cfg.FallbackTemperature, 1, out)
		if lastErr == nil {
			out.Model = fb
			return out, nil
		}
	}

	r.recordFailureOutcome(out, lastErr)
	r.log.Error("call degraded after %d attempts: %v", out.AttemptCount, lastErr)
	return out, fmt.Errorf("%w: %v", core.ErrDegraded, lastErr)
}

func (r *Runner) attemptModel(ctx context.Context, spec CallSpec, model string, maxTokens int, temperature float64, attempts int, out *Outcome) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i > 0 {
			r.sleep(retryBackoff * time.Duration(i))
		}
		out.AttemptCount++

		cred, err := r.pool.Acquire(ctx)
		if err != nil {
			// No usable credential is not something a retry fixes.
			return err
		}

		start := time.Now()
		resp, err := r.client.ChatCompletion(ctx, cred.APIKey, ports.ChatRequest{
			Model:         model,
			SystemMessage: spec.SystemMessage,
			UserMessage:   spec.UserMessage,
			Temperature:   temperature,
			MaxTokens:     maxTokens,
		})
		out.LatencyMs += time.Since(start).Milliseconds()

		if err != nil {
			lastErr = err
			if failErr := r.pool.RecordFailure(ctx, cred.ID, err); failErr != nil {
				r.log.Warn("record failure on credential %s: %v", cred.Label, failErr)
			}
			r.log.Warn("attempt %d on %s failed: %v", out.AttemptCount, model, err)
			continue
		}

		out.TokensPrompt += resp.Usage.PromptTokens
		out.TokensCompletion += resp.Usage.CompletionTokens
		out.CostUSD += metrics.CalculateCost(model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		out.FinishReason = resp.FinishReason
		out.Content = resp.Content

		if spec.Validate != nil {
			if err := spec.Validate(resp.Content); err != nil {
				lastErr = err
				if failErr := r.pool.RecordFailure(ctx, cred.ID, err); failErr != nil {
					r.log.Warn("record failure on credential %s: %v", cred.Label, failErr)
				}
				r.log.Warn("attempt %d on %s returned invalid artifact: %v", out.AttemptCount, model, err)
				continue
			}
		}

		if err := r.pool.RecordSuccess(ctx, cred.ID); err != nil {
			r.log.Warn("record success on credential %s: %v", cred.Label, err)
		}
		return nil
	}
	return lastErr
}

func (r *Runner) recordFailureOutcome(out *Outcome, err error) {
	out.Degraded = true
	code := classifyError(err)
	msg := err.Error()
	out.ErrorCode = &code
	out.ErrorMessage = &msg
}

func classifyError(err error) string {
	switch {
	case errors.Is(err, core.ErrRateLimited):
		return "RATE_LIMITED"
	case errors.Is(err, core.ErrNoCredentialAvailable):
		return "NO_CREDENTIAL"
	case core.IsValidationError(err):
		return "SCHEMA_VIOLATION"
	case errors.Is(err, core.ErrEmptyResponse):
		return "EMPTY_RESPONSE"
	case errors.Is(err, context.DeadlineExceeded):
		return "TIMEOUT"
	default:
		return "LLM_ERROR"
	}
}

// GenerateSection runs one section analysis call. The returned artifact
// is always usable: when every attempt fails a neutral degraded artifact
// is produced and Outcome.Degraded is set, so the pipeline keeps going.
func (r *Runner) GenerateSection(ctx context.Context, sectionTitle, systemMsg, userMsg string, signalCount int) (*artifact.SectionArtifact, *Outcome) {
	var decoded *artifact.SectionArtifact

	spec := CallSpec{
		Model:         r.cfg.DefaultModel,
		SystemMessage: systemMsg,
		UserMessage:   userMsg,
		Temperature:   r.cfg.Temperature,
		MaxTokens:     r.cfg.MaxTokens,
		Validate: func(content string) error {
			art, err := DecodeSectionArtifact(content)
			if err != nil {
				return err
			}
			if trimmed := art.Clamp(); trimmed > 0 {
				r.log.Debug("clamped %d oversized fields for section %q", trimmed, sectionTitle)
			}
			if err := art.Validate(signalCount); err != nil {
				return err
			}
			decoded = art
			return nil
		},
	}

	out, err := r.Run(ctx, spec)
	if err != nil || decoded == nil {
		degraded := artifact.NewDegradedSection(sectionTitle)
		return &degraded, out
	}
	return decoded, out
}

// GenerateSynthesis runs the cross-section synthesis call. It returns an
// error when degraded; the caller substitutes a minimal synthesis.
func (r *Runner) GenerateSynthesis(ctx context.Context, systemMsg, userMsg string) (*artifact.SynthesisArtifact, *Outcome, error) {
	var decoded *artifact.SynthesisArtifact

	spec := CallSpec{
		Model:         r.cfg.DefaultModel,
		SystemMessage: systemMsg,
		UserMessage:   userMsg,
		Temperature:   r.cfg.SynthesisTemperature,
		MaxTokens:     r.cfg.SynthesisMaxTokens,
		Validate: func(content string) error {
			art, err := DecodeSynthesisArtifact(content)
			if err != nil {
				return err
			}
			if err := art.Validate(); err != nil {
				return err
			}
			decoded = art
			return nil
		},
	}

	out, err := r.Run(ctx, spec)
	if err != nil {
		return nil, out, err
	}
	return decoded, out, nil
}
