package assess

import "postureai/domain/core"

// BlindSpot marks a question answered with an unknown-style option
type BlindSpot struct {
	SectionID    core.SectionID  `json:"section_id"`
	SectionTitle string          `json:"section_title"`
	QuestionID   core.QuestionID `json:"question_id"`
	QuestionText string          `json:"question_text"`
}

// SectionBlindSpots summarizes unknown answers within a section. Items is
// capped at three for report display; Count is the full tally.
type SectionBlindSpots struct {
	Count int         `json:"count"`
	Items []BlindSpot `json:"items"`
}

// BlindSpotDigest aggregates unknown answers across the assessment
type BlindSpotDigest struct {
	BySection  map[core.SectionID]SectionBlindSpots `json:"by_section"`
	TotalCount int                                  `json:"total_count"`
	AllItems   []BlindSpot                          `json:"all_items"`
}

// ComputeBlindSpots scans responses for unknown-style answers. These are the
// questions where the organisation could not answer at all, which lowers
// assessment confidence independently of the score.
func ComputeBlindSpots(structure Structure, responses map[core.QuestionID]Response) BlindSpotDigest {
	digest := BlindSpotDigest{BySection: make(map[core.SectionID]SectionBlindSpots)}

	for _, section := range structure.Sections {
		var spots []BlindSpot
		for _, q := range section.Questions {
			resp, ok := responses[q.ID]
			if !ok || len(resp.Answer) == 0 {
				continue
			}
			slug := NormalizeOption(MapNumericToSlug(q, resp.Answer[0]))
			if unknownSlugs[slug] {
				spots = append(spots, BlindSpot{
					SectionID:    section.ID,
					SectionTitle: section.Title,
					QuestionID:   q.ID,
					QuestionText: q.Text,
				})
			}
		}
		if len(spots) > 0 {
			display := spots
			if len(display) > 3 {
				display = display[:3]
			}
			digest.BySection[section.ID] = SectionBlindSpots{Count: len(spots), Items: display}
			digest.AllItems = append(digest.AllItems, spots...)
		}
	}
	digest.TotalCount = len(digest.AllItems)
	return digest
}
