package intake

import "testing"

func awsProfile(pref TimePreference) UserProfile {
	return NewProfile(Answers{
		Role:           "CISO",
		OrgSize:        "201-1000",
		Sector:         "finance",
		Environment:    "hybrid",
		SystemTypes:    []string{"public_web_apps"},
		CloudProviders: []string{"aws"},
		PrimaryGoal:    "understand overall posture",
		TimePreference: pref,
	})
}

func TestNewProfileDerivesOTICS(t *testing.T) {
	p := NewProfile(Answers{SystemTypes: []string{"public_web_apps", "ot_ics"}})
	if !p.HasOTICS {
		t.Error("ot_ics in system_types should set HasOTICS")
	}
	p = NewProfile(Answers{SystemTypes: []string{"public_web_apps"}})
	if p.HasOTICS {
		t.Error("HasOTICS set without ot_ics system type")
	}
}

func TestUsesCloud(t *testing.T) {
	cases := []struct {
		providers []string
		want      bool
	}{
		{[]string{"aws"}, true},
		{[]string{"aws", "azure"}, true},
		{[]string{"None"}, false},
		{[]string{"aws", "none"}, false},
		{nil, false},
	}
	for _, tc := range cases {
		p := UserProfile{CloudProviders: tc.providers}
		if got := p.UsesCloud(); got != tc.want {
			t.Errorf("UsesCloud(%v) = %v, want %v", tc.providers, got, tc.want)
		}
	}
}

func TestGuardrailsForceIAM(t *testing.T) {
	set := RecommendationSet{
		Recommended: []SectionRecommendation{
			{ID: "section_1", Priority: PriorityMustDo, Confidence: 0.9},
		},
	}
	out := ApplyGuardrails(set, awsProfile(TimeDeep), DefaultCatalogue())

	found := false
	for _, rec := range out.Recommended {
		if rec.ID == "section_4" {
			found = true
			if rec.Priority != PriorityMustDo {
				t.Errorf("forced IAM priority = %q, want must_do", rec.Priority)
			}
		}
	}
	if !found {
		t.Error("guardrail did not force section_4")
	}
}

func TestGuardrailsUpgradeCloudPriority(t *testing.T) {
	set := RecommendationSet{
		Recommended: []SectionRecommendation{
			{ID: "section_9", Priority: PriorityOptional, Reason: "cloud footprint noted", Confidence: 0.6},
		},
	}
	out := ApplyGuardrails(set, awsProfile(TimeDeep), DefaultCatalogue())

	for _, rec := range out.Recommended {
		if rec.ID == "section_9" {
			if rec.Priority != PriorityMustDo {
				t.Errorf("cloud section priority = %q, want must_do", rec.Priority)
			}
			return
		}
	}
	t.Error("section_9 missing after guardrails")
}

func TestGuardrailsOTICSRemovesExclusion(t *testing.T) {
	profile := awsProfile(TimeDeep)
	profile.HasOTICS = true

	set := RecommendationSet{
		Excluded: []SectionExclusion{
			{ID: "section_18", Reason: "not applicable", Confidence: 0.9},
		},
	}
	out := ApplyGuardrails(set, profile, DefaultCatalogue())

	for _, excl := range out.Excluded {
		if excl.ID == "section_18" {
			t.Error("section_18 exclusion survived for OT/ICS user")
		}
	}
	found := false
	for _, rec := range out.Recommended {
		if rec.ID == "section_18" && rec.Priority == PriorityMustDo {
			found = true
		}
	}
	if !found {
		t.Error("section_18 not force-included for OT/ICS user")
	}
}

func TestGuardrailsDropUnknownIDs(t *testing.T) {
	set := RecommendationSet{
		Recommended: []SectionRecommendation{
			{ID: "section_99", Priority: PriorityMustDo, Confidence: 0.9},
		},
		Excluded: []SectionExclusion{
			{ID: "section_42", Reason: "made up", Confidence: 0.5},
		},
	}
	out := ApplyGuardrails(set, awsProfile(TimeDeep), DefaultCatalogue())

	for _, rec := range out.Recommended {
		if rec.ID == "section_99" {
			t.Error("unknown recommended id not dropped")
		}
	}
	if len(out.Excluded) != 0 {
		t.Errorf("unknown excluded id not dropped: %v", out.Excluded)
	}
}

func TestTrimQuickBudget(t *testing.T) {
	set := RecommendationSet{
		Recommended: []SectionRecommendation{
			{ID: "section_1", Priority: PriorityMustDo, Confidence: 0.9},
			{ID: "section_4", Priority: PriorityMustDo, Confidence: 0.95},
			{ID: "section_10", Priority: PriorityMustDo, Confidence: 0.9},
			{ID: "section_7", Priority: PriorityShouldDo, Confidence: 0.6},
			{ID: "section_8", Priority: PriorityShouldDo, Confidence: 0.85},
			{ID: "section_2", Priority: PriorityShouldDo, Confidence: 0.7},
			{ID: "section_9", Priority: PriorityOptional, Confidence: 0.99},
		},
	}
	out := TrimToBudget(set, TimeQuick)

	if len(out.Recommended) != 5 {
		t.Fatalf("quick trim kept %d items, want 5", len(out.Recommended))
	}
	// 3 must_do then the 2 highest confidence should_do
	wantOrder := []string{"section_1", "section_4", "section_10", "section_8", "section_2"}
	for i, want := range wantOrder {
		if out.Recommended[i].ID != want {
			t.Errorf("position %d = %s, want %s", i, out.Recommended[i].ID, want)
		}
	}
	// Optional never makes the quick budget
	for _, rec := range out.Recommended {
		if rec.Priority == PriorityOptional {
			t.Error("optional item survived quick trim")
		}
	}
}

func TestTrimModerateIncludesOptional(t *testing.T) {
	set := RecommendationSet{
		Recommended: []SectionRecommendation{
			{ID: "section_1", Priority: PriorityMustDo, Confidence: 0.9},
			{ID: "section_4", Priority: PriorityMustDo, Confidence: 0.95},
			{ID: "section_7", Priority: PriorityShouldDo, Confidence: 0.8},
			{ID: "section_9", Priority: PriorityOptional, Confidence: 0.7},
		},
	}
	out := TrimToBudget(set, TimeModerate)
	if len(out.Recommended) != 4 {
		t.Fatalf("moderate trim kept %d items, want 4", len(out.Recommended))
	}
	if out.Recommended[3].ID != "section_9" {
		t.Errorf("optional item not appended last, got %s", out.Recommended[3].ID)
	}
}

func TestTrimDeepUntouched(t *testing.T) {
	set := RecommendationSet{
		Recommended: make([]SectionRecommendation, 12),
	}
	out := TrimToBudget(set, TimeDeep)
	if len(out.Recommended) != 12 {
		t.Errorf("deep preference trimmed to %d items", len(out.Recommended))
	}
}

func TestFallbackMinimumSet(t *testing.T) {
	profile := awsProfile(TimeDeep)
	set := Fallback(profile, DefaultCatalogue())
	set = ApplyGuardrails(set, profile, DefaultCatalogue())

	ids := map[string]Priority{}
	for _, rec := range set.Recommended {
		ids[rec.ID] = rec.Priority
	}
	for _, want := range []string{"section_1", "section_4", "section_10"} {
		if _, ok := ids[want]; !ok {
			t.Errorf("fallback missing core section %s", want)
		}
	}
	if ids["section_9"] != PriorityMustDo {
		t.Errorf("aws user: section_9 priority = %q, want must_do", ids["section_9"])
	}
	// Web apps present and posture goal trigger their sections
	if _, ok := ids["section_8"]; !ok {
		t.Error("fallback missing application section for web app user")
	}
	if _, ok := ids["section_2"]; !ok {
		t.Error("fallback missing risk section for posture goal")
	}
	// No OT/ICS means an explicit exclusion
	foundExclusion := false
	for _, excl := range set.Excluded {
		if excl.ID == "section_18" {
			foundExclusion = true
		}
	}
	if !foundExclusion {
		t.Error("fallback should exclude section_18 for non OT/ICS user")
	}
}
