package intake

import (
	"sort"
	"strings"
)

func goalMentionsPosture(goal string) bool {
	lower := strings.ToLower(goal)
	return strings.Contains(lower, "overall") || strings.Contains(lower, "posture")
}

// ApplyGuardrails enforces hard business rules over a recommendation set,
// whether it came from the model or from the fallback. Rules run before the
// time-budget trim so forced sections compete for the budget like any other
// must_do.
func ApplyGuardrails(set RecommendationSet, profile UserProfile, catalogue Catalogue) RecommendationSet {
	byID := catalogue.ByID()

	recommended := make(map[string]int, len(set.Recommended))
	for i, rec := range set.Recommended {
		recommended[rec.ID] = i
	}

	// IAM is always in scope
	if _, ok := recommended["section_4"]; !ok {
		if _, exists := byID["section_4"]; exists {
			set.Recommended = append(set.Recommended, SectionRecommendation{
				ID:         "section_4",
				Priority:   PriorityMustDo,
				Reason:     "Identity & Access Management is critical for all organizations (added by guardrail).",
				Confidence: 0.95,
			})
			recommended["section_4"] = len(set.Recommended) - 1
		}
	}

	if profile.UsesCloud() {
		if i, ok := recommended["section_9"]; ok {
			if set.Recommended[i].Priority != PriorityMustDo {
				set.Recommended[i].Priority = PriorityMustDo
				set.Recommended[i].Reason += " (upgraded by guardrail)"
			}
		} else if _, exists := byID["section_9"]; exists {
			set.Recommended = append(set.Recommended, SectionRecommendation{
				ID:         "section_9",
				Priority:   PriorityShouldDo,
				Reason:     "Cloud security is important for organizations using cloud platforms (added by guardrail).",
				Confidence: 0.9,
			})
			recommended["section_9"] = len(set.Recommended) - 1
		}
	}

	if profile.HasOTICS {
		if _, ok := recommended["section_18"]; !ok {
			if _, exists := byID["section_18"]; exists {
				kept := set.Excluded[:0]
				for _, excl := range set.Excluded {
					if excl.ID != "section_18" {
						kept = append(kept, excl)
					}
				}
				set.Excluded = kept
				set.Recommended = append(set.Recommended, SectionRecommendation{
					ID:         "section_18",
					Priority:   PriorityMustDo,
					Reason:     "OT/ICS security is critical for organizations with industrial control systems (added by guardrail).",
					Confidence: 0.95,
				})
			}
		}
	}

	// Drop anything outside the catalogue
	keptRecs := set.Recommended[:0]
	for _, rec := range set.Recommended {
		if _, exists := byID[rec.ID]; exists {
			keptRecs = append(keptRecs, rec)
		}
	}
	set.Recommended = keptRecs

	keptExcls := set.Excluded[:0]
	for _, excl := range set.Excluded {
		if _, exists := byID[excl.ID]; exists {
			keptExcls = append(keptExcls, excl)
		}
	}
	set.Excluded = keptExcls

	return set
}

// TrimToBudget reduces the recommended list to the user's time budget.
// quick keeps at most 5 items, must_do first then should_do by confidence.
// moderate keeps at most 8, adding optional after should_do. deep is
// untrimmed.
func TrimToBudget(set RecommendationSet, pref TimePreference) RecommendationSet {
	var limit int
	switch pref {
	case TimeQuick:
		limit = quickLimit
	case TimeModerate:
		limit = moderateLimit
	default:
		return set
	}

	var mustDo, shouldDo, optional []SectionRecommendation
	for _, rec := range set.Recommended {
		switch rec.Priority {
		case PriorityMustDo:
			mustDo = append(mustDo, rec)
		case PriorityShouldDo:
			shouldDo = append(shouldDo, rec)
		default:
			optional = append(optional, rec)
		}
	}

	byConfidence := func(items []SectionRecommendation) {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Confidence > items[j].Confidence
		})
	}
	byConfidence(shouldDo)
	byConfidence(optional)

	final := mustDo
	if len(final) > limit {
		final = final[:limit]
	}
	if remaining := limit - len(final); remaining > 0 {
		if remaining > len(shouldDo) {
			remaining = len(shouldDo)
		}
		final = append(final, shouldDo[:remaining]...)
	}
	if pref == TimeModerate {
		if remaining := limit - len(final); remaining > 0 {
			if remaining > len(optional) {
				remaining = len(optional)
			}
			final = append(final, optional[:remaining]...)
		}
	}

	set.Recommended = final
	return set
}
