package intake

// Fallback produces a deterministic recommendation set from the profile
// alone. Used when the model path fails after its retry.
func Fallback(profile UserProfile, catalogue Catalogue) RecommendationSet {
	byID := catalogue.ByID()
	var set RecommendationSet

	add := func(id string, priority Priority, reason string, confidence float64) {
		if _, ok := byID[id]; !ok {
			return
		}
		set.Recommended = append(set.Recommended, SectionRecommendation{
			ID:         id,
			Priority:   priority,
			Reason:     reason,
			Confidence: confidence,
		})
	}

	// Core sections every organization needs
	for _, id := range []string{"section_1", "section_4", "section_10"} {
		if meta, ok := byID[id]; ok {
			add(id, PriorityMustDo, meta.Name+" is critical for all organizations.", 0.9)
		}
	}

	if profile.UsesCloud() {
		add("section_9", PriorityMustDo,
			"Cloud security is essential for organizations using cloud platforms.", 0.95)
	}

	if profile.HasOTICS {
		add("section_18", PriorityMustDo,
			"OT/ICS security is critical for organizations with industrial control systems.", 0.95)
	} else if _, ok := byID["section_18"]; ok {
		set.Excluded = append(set.Excluded, SectionExclusion{
			ID:         "section_18",
			Reason:     "Organization does not have OT/ICS or industrial control systems.",
			Confidence: 0.99,
		})
	}

	if profile.HasSystemType("public_web_apps") || profile.HasSystemType("internal_custom_apps") {
		add("section_8", PriorityShouldDo,
			"Application security is important for organizations with custom or web applications.", 0.85)
	}

	if goalMentionsPosture(profile.PrimaryGoal) {
		add("section_2", PriorityShouldDo,
			"Risk management helps understand overall security posture.", 0.85)
	}

	add("section_7", PriorityShouldDo,
		"Data protection is important for most organizations.", 0.8)

	return set
}
