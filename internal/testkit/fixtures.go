package testkit

import (
	"encoding/json"
	"strings"

	"postureai/domain/artifact"
	"postureai/domain/assess"
	"postureai/domain/core"
)

// ValidSectionArtifact returns an artifact that passes validation against
// three prompt signals.
func ValidSectionArtifact() artifact.SectionArtifact {
	return artifact.SectionArtifact{
		SchemaVersion:   artifact.SectionSchemaVersion,
		RiskLevel:       artifact.RiskMedium,
		RiskExplanation: strings.Repeat("The organization shows partial control coverage. ", 3),
		Strengths:       []string{"MFA enforced for administrative accounts"},
		Gaps: []artifact.Gap{{
			Gap:           "Access reviews are performed ad hoc rather than on a defined quarterly schedule",
			LinkedSignals: []string{"Q1"},
			Severity:      artifact.SeverityMedium,
		}},
		Recommendations: []artifact.Recommendation{{
			Action:        "Establish a quarterly access review cadence with documented sign-off",
			Rationale:     "Scheduled reviews close the window during which stale accounts retain access",
			LinkedSignals: []string{"Q1", "Q2"},
			Effort:        "Medium",
			Impact:        "High",
			Timeline:      "60-day",
			References:    []string{"NIST CSF PR.AC-1"},
		}},
		Benchmarks: []artifact.Benchmark{{
			Control:   "Identity Management and Access Control",
			Status:    "Partial",
			Framework: "NIST CSF",
			Reference: "PR.AC",
		}},
		ConfidenceScore: 0.8,
	}
}

// ValidSectionJSON is ValidSectionArtifact serialized, for mock replies
func ValidSectionJSON() string {
	raw, _ := json.Marshal(ValidSectionArtifact())
	return string(raw)
}

// ValidSynthesisArtifact returns a synthesis that passes validation
func ValidSynthesisArtifact() artifact.SynthesisArtifact {
	return artifact.SynthesisArtifact{
		SchemaVersion:          artifact.SynthesisSchemaVersion,
		ExecutiveSummary:       strings.Repeat("The assessment indicates a maturing security program with focused gaps in access governance and incident readiness. ", 2),
		OverallRiskLevel:       artifact.RiskMedium,
		OverallRiskExplanation: strings.Repeat("Core preventive controls are in place but detection and response capabilities lag. ", 2),
		CrossCuttingThemes: []artifact.Theme{{
			Theme:           "Inconsistent review cadences",
			Description:     "Multiple domains rely on ad hoc rather than scheduled control reviews",
			AffectedDomains: []string{"Identity & Access Management", "Security Governance"},
			Severity:        artifact.SeverityMedium,
		}},
		Top10Initiatives: []artifact.Initiative{{
			Priority:        1,
			Title:           "Formalize quarterly access review program",
			Description:     "Introduce a documented quarterly review of all privileged and standard accounts",
			AffectedDomains: []string{"Identity & Access Management"},
			Effort:          "Medium",
			Impact:          "High",
			Timeline:        "90-day",
			SuccessMetrics:  []string{"100% of privileged accounts reviewed each quarter"},
			Owner:           "CISO",
		}},
		QuickWins:        []string{"Enable MFA for all remaining user accounts"},
		LongTermStrategy: strings.Repeat("Build a risk-driven roadmap that sequences detection and response investments after access governance is stabilized. ", 2),
		ConfidenceScore:  0.75,
	}
}

// ValidSynthesisJSON is ValidSynthesisArtifact serialized
func ValidSynthesisJSON() string {
	raw, _ := json.Marshal(ValidSynthesisArtifact())
	return string(raw)
}

// SampleSectionInput returns a small IAM section input with three answered
// questions, suitable for fingerprinting and prompt assembly tests.
func SampleSectionInput() assess.SectionInput {
	return assess.SectionInput{
		SectionID: core.SectionID("section_4"),
		Title:     "Identity & Access Management",
		Items: []assess.InputItem{
			{
				QuestionID:   core.QuestionID("q4_1"),
				QuestionText: "How often are user access rights reviewed?",
				Answer:       "annually",
				Weight:       3,
				Comment:      "Reviews happen during the yearly audit only",
			},
			{
				QuestionID:   core.QuestionID("q4_2"),
				QuestionText: "Is multi-factor authentication enforced for administrative accounts?",
				Answer:       "yes",
				Weight:       5,
			},
			{
				QuestionID:   core.QuestionID("q4_3"),
				QuestionText: "How are privileged accounts managed?",
				Answer:       "partially_implemented",
				Weight:       4,
				Context:      "PAM rollout in progress for production systems",
			},
		},
	}
}
