package assess

import (
	"testing"

	"postureai/domain/core"
)

func blindSpotStructure() Structure {
	questions := make([]Question, 0, 5)
	for _, id := range []core.QuestionID{"q4_1", "q4_2", "q4_3", "q4_4", "q4_5"} {
		questions = append(questions, Question{
			ID:        id,
			SectionID: "section_4",
			Text:      "Question " + string(id),
			Type:      QuestionMultipleChoice,
			Weight:    3,
			ScaleType: ScaleMaturity,
		})
	}
	return Structure{Sections: []Section{
		{ID: "section_4", Title: "Identity & Access Management", Questions: questions},
		{ID: "section_9", Title: "Cloud Security", Questions: []Question{
			{ID: "q9_1", SectionID: "section_9", Type: QuestionYesNo, Weight: 5},
		}},
	}}
}

func TestComputeBlindSpotsCollectsUnknownAnswers(t *testing.T) {
	responses := map[core.QuestionID]Response{
		"q4_1": {QuestionID: "q4_1", Answer: []string{"unknown"}},
		"q4_2": {QuestionID: "q4_2", Answer: []string{"managed"}},
		"q4_3": {QuestionID: "q4_3", Answer: []string{"Not Sure"}},
		"q9_1": {QuestionID: "q9_1", Answer: []string{"yes"}},
	}

	digest := ComputeBlindSpots(blindSpotStructure(), responses)

	if digest.TotalCount != 2 {
		t.Fatalf("total = %d, want 2", digest.TotalCount)
	}
	spots, ok := digest.BySection["section_4"]
	if !ok {
		t.Fatal("missing section_4 entry")
	}
	if spots.Count != 2 || len(spots.Items) != 2 {
		t.Fatalf("section_4 count/items = %d/%d, want 2/2", spots.Count, len(spots.Items))
	}
	if spots.Items[0].QuestionID != "q4_1" || spots.Items[0].SectionTitle != "Identity & Access Management" {
		t.Fatalf("unexpected first item: %+v", spots.Items[0])
	}
	if _, ok := digest.BySection["section_9"]; ok {
		t.Fatal("answered sections without unknowns must not appear")
	}
}

func TestComputeBlindSpotsCapsDisplayItems(t *testing.T) {
	responses := map[core.QuestionID]Response{
		"q4_1": {QuestionID: "q4_1", Answer: []string{"unknown"}},
		"q4_2": {QuestionID: "q4_2", Answer: []string{"unknown"}},
		"q4_3": {QuestionID: "q4_3", Answer: []string{"dont_know"}},
		"q4_4": {QuestionID: "q4_4", Answer: []string{"not_sure"}},
	}

	digest := ComputeBlindSpots(blindSpotStructure(), responses)

	spots := digest.BySection["section_4"]
	if spots.Count != 4 {
		t.Fatalf("count = %d, want 4", spots.Count)
	}
	if len(spots.Items) != 3 {
		t.Fatalf("display items = %d, want cap of 3", len(spots.Items))
	}
	if len(digest.AllItems) != 4 {
		t.Fatalf("all items = %d, want full tally 4", len(digest.AllItems))
	}
}

func TestComputeBlindSpotsIgnoresUnanswered(t *testing.T) {
	digest := ComputeBlindSpots(blindSpotStructure(), map[core.QuestionID]Response{})
	if digest.TotalCount != 0 || len(digest.BySection) != 0 {
		t.Fatalf("unanswered questions are not blind spots: %+v", digest)
	}
}
