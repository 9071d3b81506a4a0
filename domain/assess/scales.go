package assess

import "strings"

// ScaleType names a scoring scale from the registry
type ScaleType string

const (
	ScaleMaturity            ScaleType = "maturity"
	ScaleFrequencyReview     ScaleType = "frequency_review"
	ScaleFrequencyMonitoring ScaleType = "frequency_monitoring"
	ScaleCoverage            ScaleType = "coverage"
	ScaleImplementation      ScaleType = "implementation"
	ScaleGovernance          ScaleType = "governance"
)

// ScoreFlag marks a sentinel answer recognised across all scales
type ScoreFlag string

const (
	FlagUnknown       ScoreFlag = "unknown"
	FlagNotApplicable ScoreFlag = "not_applicable"
)

// scaleWeights maps option slugs to weight multipliers in [0,1] per scale.
var scaleWeights = map[ScaleType]map[string]float64{
	ScaleMaturity: {
		"optimized": 1.0,
		"managed":   0.75,
		"defined":   0.5,
		"ad_hoc":    0.25,
	},
	ScaleFrequencyReview: {
		"quarterly":                1.0,
		"annually":                 0.75,
		"only_after_changes":       0.5,
		"only_after_major_changes": 0.5,
		"as_needed":                0.5,
		"no_formal_review":         0.0,
		"never":                    0.0,
	},
	ScaleFrequencyMonitoring: {
		"continuously":     1.0,
		"daily":            0.9,
		"weekly":           0.8,
		"monthly":          0.7,
		"quarterly":        0.6,
		"only_when_issues": 0.3,
		"not_monitored":    0.0,
		"never":            0.0,
	},
	ScaleCoverage: {
		"76_100": 1.0,
		"51_75":  0.75,
		"26_50":  0.5,
		"0_25":   0.25,
	},
	ScaleImplementation: {
		"fully_implemented":     1.0,
		"partially_implemented": 0.5,
		"planned":               0.25,
		"not_implemented":       0.0,
	},
	ScaleGovernance: {
		"documented_approved_maintained": 1.0,
		"documented_but_stale":           0.5,
		"informal_understanding":         0.25,
		"no_strategy":                    0.0,
	},
}

var unknownSlugs = map[string]bool{
	"unknown":    true,
	"not_sure":   true,
	"don't_know": true,
	"dont_know":  true,
}

var notApplicableSlugs = map[string]bool{
	"not_applicable":                     true,
	"not_applicable_to_our_organization": true,
}

// NormalizeOption normalizes an option slug for consistent lookup: lowercase,
// with spaces, dashes and slashes folded to underscores. The n_a/na
// shorthands collapse to not_applicable.
func NormalizeOption(value string) string {
	normalized := strings.ToLower(value)
	normalized = strings.NewReplacer(" ", "_", "-", "_", "/", "_").Replace(normalized)
	if normalized == "n_a" || normalized == "na" {
		return "not_applicable"
	}
	return normalized
}

// OptionWeight returns the weight multiplier and flags for an option slug.
// Sentinels win over scale tables; unlisted slugs on a known scale score
// full weight, matching the permissive behaviour of the upstream library.
func OptionWeight(scale ScaleType, option string) (float64, []ScoreFlag) {
	slug := NormalizeOption(option)

	if unknownSlugs[slug] {
		return 0.0, []ScoreFlag{FlagUnknown}
	}
	if notApplicableSlugs[slug] {
		return 0.0, []ScoreFlag{FlagNotApplicable}
	}

	table, ok := scaleWeights[scale]
	if !ok {
		return 1.0, nil
	}
	if weight, ok := table[slug]; ok {
		return weight, nil
	}
	return 1.0, nil
}

// MapNumericToSlug maps legacy numeric answer values to option slugs by
// ordinal. Non-numeric values pass through unchanged.
func MapNumericToSlug(q Question, answer string) string {
	if answer == "" || !isDigits(answer) {
		return answer
	}
	index := 0
	for _, ch := range answer {
		index = index*10 + int(ch-'0')
	}
	index--
	if index >= 0 && index < len(q.Options) {
		return q.Options[index].Value
	}
	return answer
}

func isDigits(s string) bool {
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return len(s) > 0
}
