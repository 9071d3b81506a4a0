// Package cache gives section artifacts content-addressed reuse across
// reports.
package cache

import (
	"encoding/json"
	"sort"
	"strings"

	"postureai/domain/assess"
	"postureai/domain/core"
)

// normalizedItem is the projection of one answered question that feeds the
// fingerprint. Key names are single letters so the canonical JSON stays
// stable and small.
type normalizedItem struct {
	A   string  `json:"a"`
	C   string  `json:"c"`
	Ctx string  `json:"ctx"`
	Q   string  `json:"q"`
	W   float64 `json:"w"`
}

const questionTextLimit = 100

// Fingerprint computes the deterministic content hash of a section's
// normalized inputs. Question text is truncated, answers and comments are
// trimmed and lowercased, and items are sorted by question text so input
// ordering never changes the result.
func Fingerprint(items []assess.InputItem) core.Fingerprint {
	normalized := make([]normalizedItem, len(items))
	for i, item := range items {
		question := item.QuestionText
		if len(question) > questionTextLimit {
			question = question[:questionTextLimit]
		}
		normalized[i] = normalizedItem{
			A:   strings.ToLower(strings.TrimSpace(item.Answer)),
			C:   strings.ToLower(strings.TrimSpace(item.Comment)),
			Ctx: strings.ToLower(strings.TrimSpace(item.Context)),
			Q:   question,
			W:   float64(item.Weight),
		}
	}

	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].Q < normalized[j].Q
	})

	canonical, err := json.Marshal(normalized)
	if err != nil {
		// Marshal of plain strings and floats cannot fail
		panic(err)
	}
	return core.NewFingerprint(canonical)
}
