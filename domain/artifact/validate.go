package artifact

import (
	"fmt"
	"strconv"
	"strings"

	"postureai/domain/core"
)

// Field length ceilings mirrored by the prompt schema fragments. Changing
// any of these requires a schema version bump.
const (
	maxGapChars    = 900
	maxActionChars = 450
)

var validEffort = map[string]bool{"Low": true, "Medium": true, "High": true}
var validImpact = map[string]bool{"Low": true, "Medium": true, "High": true, "Critical": true}
var validTimeline = map[string]bool{"30-day": true, "60-day": true, "90-day": true}
var validBenchmarkStatus = map[string]bool{
	"Implemented": true, "Partial": true, "Missing": true, "Not Applicable": true,
}

var validInitiativeEffort = map[string]bool{"Low": true, "Medium": true, "High": true, "Very High": true}
var validInitiativeImpact = map[string]bool{"Medium": true, "High": true, "Critical": true}
var validInitiativeTimeline = map[string]bool{"30-day": true, "60-day": true, "90-day": true, "90+ day": true}

// validateSignals checks that every linked signal is Q1..Qn
func validateSignals(signals []string, n int) error {
	if len(signals) == 0 {
		return fmt.Errorf("%w: linked_signals requires at least one signal", core.ErrSchemaViolation)
	}
	for _, signal := range signals {
		if !strings.HasPrefix(signal, "Q") {
			return core.NewSignalError(signal, n)
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(signal, "Q"))
		if err != nil || idx < 1 || idx > n {
			return core.NewSignalError(signal, n)
		}
	}
	return nil
}

func validateLen(field, value string, min, max int) error {
	if len(value) < min || len(value) > max {
		return core.NewValidationError(field,
			fmt.Sprintf("length %d outside [%d,%d]", len(value), min, max))
	}
	return nil
}

// Validate checks the section artifact against its schema. signalCount is
// the number of Q-labelled inputs that were enumerated in the prompt; every
// linked signal must resolve into that range.
func (a SectionArtifact) Validate(signalCount int) error {
	if !ValidRiskLevel(a.RiskLevel) {
		return fmt.Errorf("%w: invalid risk_level %q", core.ErrSchemaViolation, a.RiskLevel)
	}
	if err := validateLen("risk_explanation", a.RiskExplanation, 50, 1000); err != nil {
		return fmt.Errorf("%w: %v", core.ErrSchemaViolation, err)
	}
	if len(a.Strengths) < 1 || len(a.Strengths) > 5 {
		return fmt.Errorf("%w: strengths must have 1-5 items, got %d", core.ErrSchemaViolation, len(a.Strengths))
	}
	if len(a.Gaps) < 1 || len(a.Gaps) > 5 {
		return fmt.Errorf("%w: gaps must have 1-5 items, got %d", core.ErrSchemaViolation, len(a.Gaps))
	}
	if len(a.Recommendations) < 1 || len(a.Recommendations) > 5 {
		return fmt.Errorf("%w: recommendations must have 1-5 items, got %d", core.ErrSchemaViolation, len(a.Recommendations))
	}
	if len(a.Benchmarks) < 1 || len(a.Benchmarks) > 10 {
		return fmt.Errorf("%w: benchmarks must have 1-10 items, got %d", core.ErrSchemaViolation, len(a.Benchmarks))
	}
	if a.ConfidenceScore < 0 || a.ConfidenceScore > 1 {
		return fmt.Errorf("%w: confidence_score %v outside [0,1]", core.ErrSchemaViolation, a.ConfidenceScore)
	}

	criticalGaps := 0
	for i, gap := range a.Gaps {
		if err := validateLen(fmt.Sprintf("gaps[%d].gap", i), gap.Gap, 10, 1000); err != nil {
			return fmt.Errorf("%w: %v", core.ErrSchemaViolation, err)
		}
		if err := validateSignals(gap.LinkedSignals, signalCount); err != nil {
			return err
		}
		switch gap.Severity {
		case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		default:
			return fmt.Errorf("%w: gaps[%d] has invalid severity %q", core.ErrSchemaViolation, i, gap.Severity)
		}
		if gap.Severity == SeverityCritical {
			criticalGaps++
		}
	}

	if criticalGaps > 0 && a.RiskLevel != RiskHigh && a.RiskLevel != RiskCritical {
		return fmt.Errorf("%w: %d critical gap(s) with risk_level %q",
			core.ErrRiskCoupling, criticalGaps, a.RiskLevel)
	}

	for i, rec := range a.Recommendations {
		if err := validateLen(fmt.Sprintf("recommendations[%d].action", i), rec.Action, 10, 500); err != nil {
			return fmt.Errorf("%w: %v", core.ErrSchemaViolation, err)
		}
		if err := validateLen(fmt.Sprintf("recommendations[%d].rationale", i), rec.Rationale, 20, 1000); err != nil {
			return fmt.Errorf("%w: %v", core.ErrSchemaViolation, err)
		}
		if err := validateSignals(rec.LinkedSignals, signalCount); err != nil {
			return err
		}
		if !validEffort[rec.Effort] {
			return fmt.Errorf("%w: recommendations[%d] has invalid effort %q", core.ErrSchemaViolation, i, rec.Effort)
		}
		if !validImpact[rec.Impact] {
			return fmt.Errorf("%w: recommendations[%d] has invalid impact %q", core.ErrSchemaViolation, i, rec.Impact)
		}
		if !validTimeline[rec.Timeline] {
			return fmt.Errorf("%w: recommendations[%d] has invalid timeline %q", core.ErrSchemaViolation, i, rec.Timeline)
		}
	}

	for i, bench := range a.Benchmarks {
		if bench.Control == "" || len(bench.Control) > 200 {
			return fmt.Errorf("%w: benchmarks[%d] has invalid control", core.ErrSchemaViolation, i)
		}
		if !validBenchmarkStatus[bench.Status] {
			return fmt.Errorf("%w: benchmarks[%d] has invalid status %q", core.ErrSchemaViolation, i, bench.Status)
		}
	}

	return nil
}

// Clamp truncates overlong free-text fields in place before validation, so a
// single runaway field does not degrade the whole section. Returns the
// number of fields clamped.
func (a *SectionArtifact) Clamp() int {
	clamped := 0
	for i := range a.Gaps {
		if len(a.Gaps[i].Gap) > maxGapChars {
			a.Gaps[i].Gap = a.Gaps[i].Gap[:maxGapChars-3] + "..."
			clamped++
		}
	}
	for i := range a.Recommendations {
		if len(a.Recommendations[i].Action) > maxActionChars {
			a.Recommendations[i].Action = a.Recommendations[i].Action[:maxActionChars-3] + "..."
			clamped++
		}
	}
	return clamped
}

// Validate checks the synthesis artifact against its schema. Section ids in
// affected_domains are not cross-checked here; the synthesis stage drops
// unknown ids before persisting.
func (s SynthesisArtifact) Validate() error {
	if err := validateLen("executive_summary", s.ExecutiveSummary, 200, 2000); err != nil {
		return fmt.Errorf("%w: %v", core.ErrSchemaViolation, err)
	}
	if !ValidRiskLevel(s.OverallRiskLevel) {
		return fmt.Errorf("%w: invalid overall_risk_level %q", core.ErrSchemaViolation, s.OverallRiskLevel)
	}
	if err := validateLen("overall_risk_explanation", s.OverallRiskExplanation, 100, 1000); err != nil {
		return fmt.Errorf("%w: %v", core.ErrSchemaViolation, err)
	}
	if len(s.CrossCuttingThemes) > 5 {
		return fmt.Errorf("%w: at most 5 cross_cutting_themes, got %d", core.ErrSchemaViolation, len(s.CrossCuttingThemes))
	}
	if len(s.Top10Initiatives) > 10 {
		return fmt.Errorf("%w: at most 10 initiatives, got %d", core.ErrSchemaViolation, len(s.Top10Initiatives))
	}
	if len(s.QuickWins) > 5 {
		return fmt.Errorf("%w: at most 5 quick_wins, got %d", core.ErrSchemaViolation, len(s.QuickWins))
	}
	if err := validateLen("long_term_strategy", s.LongTermStrategy, 200, 1000); err != nil {
		return fmt.Errorf("%w: %v", core.ErrSchemaViolation, err)
	}
	if s.ConfidenceScore < 0 || s.ConfidenceScore > 1 {
		return fmt.Errorf("%w: confidence_score %v outside [0,1]", core.ErrSchemaViolation, s.ConfidenceScore)
	}

	for i, theme := range s.CrossCuttingThemes {
		if err := validateLen(fmt.Sprintf("cross_cutting_themes[%d].theme", i), theme.Theme, 10, 200); err != nil {
			return fmt.Errorf("%w: %v", core.ErrSchemaViolation, err)
		}
		if len(theme.AffectedDomains) == 0 {
			return fmt.Errorf("%w: cross_cutting_themes[%d] has no affected_domains", core.ErrSchemaViolation, i)
		}
	}

	for i, init := range s.Top10Initiatives {
		if init.Priority < 1 || init.Priority > 10 {
			return fmt.Errorf("%w: top_10_initiatives[%d] priority %d outside [1,10]", core.ErrSchemaViolation, i, init.Priority)
		}
		if err := validateLen(fmt.Sprintf("top_10_initiatives[%d].title", i), init.Title, 10, 200); err != nil {
			return fmt.Errorf("%w: %v", core.ErrSchemaViolation, err)
		}
		if len(init.AffectedDomains) == 0 {
			return fmt.Errorf("%w: top_10_initiatives[%d] has no affected_domains", core.ErrSchemaViolation, i)
		}
		if !validInitiativeEffort[init.Effort] {
			return fmt.Errorf("%w: top_10_initiatives[%d] has invalid effort %q", core.ErrSchemaViolation, i, init.Effort)
		}
		if !validInitiativeImpact[init.Impact] {
			return fmt.Errorf("%w: top_10_initiatives[%d] has invalid impact %q", core.ErrSchemaViolation, i, init.Impact)
		}
		if !validInitiativeTimeline[init.Timeline] {
			return fmt.Errorf("%w: top_10_initiatives[%d] has invalid timeline %q", core.ErrSchemaViolation, i, init.Timeline)
		}
		if len(init.SuccessMetrics) < 1 || len(init.SuccessMetrics) > 3 {
			return fmt.Errorf("%w: top_10_initiatives[%d] must have 1-3 success_metrics", core.ErrSchemaViolation, i)
		}
	}

	return nil
}
