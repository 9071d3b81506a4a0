package ai

import (
	"errors"
	"strings"
	"testing"

	"postureai/domain/core"
	"postureai/internal/testkit"
)

func TestCleanJSONContentFences(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"plain", `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```"},
		{"fenced no lang", "```\n{\"a\": 1}\n```"},
		{"leading chatter", "Here is the JSON you asked for:\n{\"a\": 1}"},
		{"trailing chatter", "{\"a\": 1}\nLet me know if you need anything else."},
		{"whitespace", "  \n {\"a\": 1} \n "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cleanJSONContent(tc.content)
			if got != `{"a": 1}` {
				t.Errorf("cleanJSONContent(%q) = %q", tc.content, got)
			}
		})
	}
}

func TestDecodeSectionArtifact(t *testing.T) {
	art, err := DecodeSectionArtifact(testkit.ValidSectionJSON())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(art.Gaps) != 1 {
		t.Errorf("expected 1 gap, got %d", len(art.Gaps))
	}
}

func TestDecodeSectionArtifactGarbage(t *testing.T) {
	_, err := DecodeSectionArtifact("the model refused to answer")
	if !errors.Is(err, core.ErrSchemaViolation) {
		t.Errorf("expected schema violation, got %v", err)
	}
}

func TestDecodeSectionArtifactEmpty(t *testing.T) {
	_, err := DecodeSectionArtifact("   ")
	if !errors.Is(err, core.ErrEmptyResponse) {
		t.Errorf("expected empty response error, got %v", err)
	}
}

func TestDecodeSectionArtifactDefaultsSchemaVersion(t *testing.T) {
	raw := strings.Replace(testkit.ValidSectionJSON(), `"schema_version":"1.1",`, "", 1)
	art, err := DecodeSectionArtifact(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.SchemaVersion != "1.1" {
		t.Errorf("expected schema version default 1.1, got %q", art.SchemaVersion)
	}
}

func TestDecodeRecommendationSet(t *testing.T) {
	raw := `{
		"recommended_sections": [
			{"id": "section_4", "priority": "must_do", "reason": "core identity risks", "confidence": 0.9}
		],
		"excluded_sections": [
			{"id": "section_18", "reason": "no OT/ICS systems", "confidence": 0.95}
		]
	}`
	set, err := DecodeRecommendationSet(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Recommended) != 1 || set.Recommended[0].ID != "section_4" {
		t.Errorf("unexpected recommended sections: %+v", set.Recommended)
	}
	if len(set.Excluded) != 1 {
		t.Errorf("expected 1 exclusion, got %d", len(set.Excluded))
	}
}

func TestDecodeRecommendationSetRequiresSections(t *testing.T) {
	_, err := DecodeRecommendationSet(`{"recommended_sections": [], "excluded_sections": []}`)
	if !errors.Is(err, core.ErrSchemaViolation) {
		t.Errorf("expected schema violation for empty set, got %v", err)
	}
}
