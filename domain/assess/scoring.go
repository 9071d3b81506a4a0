package assess

import "postureai/domain/core"

// QuestionScore is the outcome of scoring one answered question
type QuestionScore struct {
	Score    int
	MaxScore int
	Flags    []ScoreFlag
}

func hasFlag(flags []ScoreFlag, f ScoreFlag) bool {
	for _, flag := range flags {
		if flag == f {
			return true
		}
	}
	return false
}

// ScoreQuestion computes the weighted score for a single response.
//
// yes_no collapses to {yes: full weight, no: zero}. multiple_choice goes
// through the scale registry when the question names a scale; otherwise any
// non-empty answer earns full weight. multiple_select scores each chosen slug
// and keeps the best one. not_applicable zeroes both score and max_score so
// the question drops out of the section denominator; unknown zeroes the
// score only.
func ScoreQuestion(q Question, r Response) QuestionScore {
	switch q.Type {
	case QuestionYesNo:
		score := 0
		if len(r.Answer) > 0 && NormalizeOption(r.Answer[0]) == "yes" {
			score = q.Weight
		}
		return QuestionScore{Score: score, MaxScore: q.Weight}

	case QuestionMultipleChoice:
		if len(r.Answer) == 0 || r.Answer[0] == "" {
			return QuestionScore{Score: 0, MaxScore: q.Weight}
		}
		if q.ScaleType == "" {
			return QuestionScore{Score: q.Weight, MaxScore: q.Weight}
		}
		slug := MapNumericToSlug(q, r.Answer[0])
		multiplier, flags := OptionWeight(q.ScaleType, slug)
		if hasFlag(flags, FlagNotApplicable) {
			return QuestionScore{Score: 0, MaxScore: 0, Flags: flags}
		}
		return QuestionScore{
			Score:    int(float64(q.Weight) * multiplier),
			MaxScore: q.Weight,
			Flags:    flags,
		}

	case QuestionMultipleSelect:
		if len(r.Answer) == 0 {
			return QuestionScore{Score: 0, MaxScore: q.Weight}
		}
		if q.ScaleType == "" {
			return QuestionScore{Score: q.Weight, MaxScore: q.Weight}
		}
		// Best answer wins across the chosen slugs.
		best := 0.0
		var allFlags []ScoreFlag
		for _, chosen := range r.Answer {
			slug := MapNumericToSlug(q, chosen)
			multiplier, flags := OptionWeight(q.ScaleType, slug)
			allFlags = append(allFlags, flags...)
			if multiplier > best {
				best = multiplier
			}
		}
		if hasFlag(allFlags, FlagNotApplicable) {
			return QuestionScore{Score: 0, MaxScore: 0, Flags: allFlags}
		}
		return QuestionScore{
			Score:    int(float64(q.Weight) * best),
			MaxScore: q.Weight,
			Flags:    allFlags,
		}
	}

	return QuestionScore{Score: 0, MaxScore: q.Weight}
}

// SectionScore aggregates question scores for one section
type SectionScore struct {
	SectionID          core.SectionID `json:"section_id"`
	Score              int            `json:"score"`
	MaxScore           int            `json:"max_score"`
	Percentage         float64        `json:"percentage"`
	CompletionRate     float64        `json:"completion_rate"`
	ResponsesCount     int            `json:"responses_count"`
	TotalQuestions     int            `json:"total_questions"`
	UnknownCount       int            `json:"unknown_count"`
	NotApplicableCount int            `json:"not_applicable_count"`
}

// Scores holds section-level and overall score aggregates for a report
type Scores struct {
	Sections map[core.SectionID]SectionScore `json:"sections"`
	Overall  SectionScore                    `json:"overall"`
}

// CalculateScores scores every section in the structure against the raw
// responses. Unanswered questions keep their weight in the denominator.
func CalculateScores(structure Structure, responses map[core.QuestionID]Response) Scores {
	scores := Scores{Sections: make(map[core.SectionID]SectionScore, len(structure.Sections))}

	for _, section := range structure.Sections {
		ss := SectionScore{SectionID: section.ID, TotalQuestions: len(section.Questions)}

		for _, q := range section.Questions {
			resp, answered := responses[q.ID]
			if !answered {
				ss.MaxScore += q.Weight
				continue
			}
			ss.ResponsesCount++

			result := ScoreQuestion(q, resp)
			ss.Score += result.Score
			ss.MaxScore += result.MaxScore
			if hasFlag(result.Flags, FlagUnknown) {
				ss.UnknownCount++
			}
			if hasFlag(result.Flags, FlagNotApplicable) {
				ss.NotApplicableCount++
			}
		}

		if len(section.Questions) > 0 {
			ss.CompletionRate = float64(ss.ResponsesCount) / float64(len(section.Questions)) * 100
		}
		if ss.MaxScore > 0 {
			ss.Percentage = float64(ss.Score) / float64(ss.MaxScore) * 100
		}
		scores.Sections[section.ID] = ss

		scores.Overall.Score += ss.Score
		scores.Overall.MaxScore += ss.MaxScore
		scores.Overall.UnknownCount += ss.UnknownCount
		scores.Overall.NotApplicableCount += ss.NotApplicableCount
	}

	if scores.Overall.MaxScore > 0 {
		scores.Overall.Percentage = float64(scores.Overall.Score) / float64(scores.Overall.MaxScore) * 100
	}
	return scores
}
