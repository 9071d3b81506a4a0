package artifact

import "fmt"

// NewDegradedSection builds the terminal placeholder returned when every
// generation attempt failed. It intentionally does not pass Validate; it is
// never cached and is flagged in metrics.
func NewDegradedSection(sectionTitle string) SectionArtifact {
	return SectionArtifact{
		SchemaVersion: SectionSchemaVersion,
		RiskLevel:     RiskMedium,
		RiskExplanation: fmt.Sprintf(
			"Automated analysis for %q could not be completed. The risk level shown is a neutral default, not an assessment. Please review the raw responses for this section manually.",
			sectionTitle),
		Strengths:       []string{},
		Gaps:            []Gap{},
		Recommendations: []Recommendation{},
		Benchmarks:      []Benchmark{},
		ConfidenceScore: 0,
	}
}

// IsDegraded reports whether the artifact is the placeholder shape
func (a SectionArtifact) IsDegraded() bool {
	return a.ConfidenceScore == 0 && len(a.Gaps) == 0 && len(a.Recommendations) == 0
}

// NewMinimalSynthesis is the synthesis fallback when the synthesis call
// fails. It restates the overall score and points the reader at the
// section-level output. overallPct is the 0-100 assessment percentage.
func NewMinimalSynthesis(overallPct float64, sectionCount int) SynthesisArtifact {
	risk := riskForScore(overallPct)
	return SynthesisArtifact{
		SchemaVersion: SynthesisSchemaVersion,
		ExecutiveSummary: fmt.Sprintf(
			"This assessment covered %d security domains with an overall posture score of %.0f%%. "+
				"An automated executive synthesis could not be generated for this report; the per-domain analyses below contain the complete findings, gaps, and recommendations. "+
				"Prioritize the domains with the lowest scores and any gaps marked High or Critical severity.",
			sectionCount, overallPct),
		OverallRiskLevel: risk,
		OverallRiskExplanation: fmt.Sprintf(
			"Risk level derived directly from the overall assessment score of %.0f%%. See individual domain analyses for the detailed risk drivers.",
			overallPct),
		CrossCuttingThemes: []Theme{},
		Top10Initiatives:   []Initiative{},
		QuickWins:          []string{},
		LongTermStrategy: "Review the domain-level recommendations in priority order, starting with the lowest scoring domains. " +
			"Address Critical and High severity gaps first, then build a remediation roadmap from the per-domain 30, 60 and 90 day recommendations.",
		ConfidenceScore: 0,
	}
}

func riskForScore(pct float64) RiskLevel {
	switch {
	case pct >= 80:
		return RiskLow
	case pct >= 60:
		return RiskMedium
	case pct >= 40:
		return RiskMediumHigh
	default:
		return RiskHigh
	}
}
