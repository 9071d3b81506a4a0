// Package artifact defines the validated JSON payloads produced by analysis
// calls: per-section insights and the cross-section synthesis.
package artifact

// SectionSchemaVersion is bumped on any change to the section artifact
// schema, including relaxing a length ceiling.
const SectionSchemaVersion = "1.1"

// SynthesisSchemaVersion tracks the synthesis artifact schema.
const SynthesisSchemaVersion = "1.0"

// RiskLevel is the ordered risk scale shared by sections and synthesis
type RiskLevel string

const (
	RiskLow        RiskLevel = "Low"
	RiskMedium     RiskLevel = "Medium"
	RiskMediumHigh RiskLevel = "Medium-High"
	RiskHigh       RiskLevel = "High"
	RiskCritical   RiskLevel = "Critical"
)

// ValidRiskLevel reports whether the value is one of the five levels
func ValidRiskLevel(r RiskLevel) bool {
	switch r {
	case RiskLow, RiskMedium, RiskMediumHigh, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// Severity grades an individual gap
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Gap is an identified security weakness tied back to input signals
type Gap struct {
	Gap           string   `json:"gap"`
	LinkedSignals []string `json:"linked_signals"`
	Severity      Severity `json:"severity"`
}

// Recommendation is an actionable item with traceability to signals
type Recommendation struct {
	Action        string   `json:"action"`
	Rationale     string   `json:"rationale"`
	LinkedSignals []string `json:"linked_signals"`
	Effort        string   `json:"effort"`
	Impact        string   `json:"impact"`
	Timeline      string   `json:"timeline"`
	References    []string `json:"references"`
}

// Benchmark is an industry control comparison
type Benchmark struct {
	Control   string `json:"control"`
	Status    string `json:"status"`
	Framework string `json:"framework"`
	Reference string `json:"reference"`
}

// SectionArtifact is the structured insight for one assessment section
type SectionArtifact struct {
	SchemaVersion   string           `json:"schema_version"`
	RiskLevel       RiskLevel        `json:"risk_level"`
	RiskExplanation string           `json:"risk_explanation"`
	Strengths       []string         `json:"strengths"`
	Gaps            []Gap            `json:"gaps"`
	Recommendations []Recommendation `json:"recommendations"`
	Benchmarks      []Benchmark      `json:"benchmarks"`
	ConfidenceScore float64          `json:"confidence_score"`
}

// Theme is a cross-cutting finding that spans multiple domains
type Theme struct {
	Theme           string   `json:"theme"`
	Description     string   `json:"description"`
	AffectedDomains []string `json:"affected_domains"`
	Severity        Severity `json:"severity"`
}

// Initiative is one prioritized entry of the synthesis roadmap
type Initiative struct {
	Priority        int      `json:"priority"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	AffectedDomains []string `json:"affected_domains"`
	Effort          string   `json:"effort"`
	Impact          string   `json:"impact"`
	Timeline        string   `json:"timeline"`
	Dependencies    []int    `json:"dependencies"`
	SuccessMetrics  []string `json:"success_metrics"`
	Owner           string   `json:"owner"`
}

// SynthesisArtifact is the executive cross-section synthesis for a report
type SynthesisArtifact struct {
	SchemaVersion          string       `json:"schema_version"`
	ExecutiveSummary       string       `json:"executive_summary"`
	OverallRiskLevel       RiskLevel    `json:"overall_risk_level"`
	OverallRiskExplanation string       `json:"overall_risk_explanation"`
	CrossCuttingThemes     []Theme      `json:"cross_cutting_themes"`
	Top10Initiatives       []Initiative `json:"top_10_initiatives"`
	QuickWins              []string     `json:"quick_wins"`
	LongTermStrategy       string       `json:"long_term_strategy"`
	ConfidenceScore        float64      `json:"confidence_score"`
}
