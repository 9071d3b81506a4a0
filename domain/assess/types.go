package assess

import (
	"postureai/domain/core"
)

// QuestionType enumerates the supported question shapes
type QuestionType string

const (
	QuestionYesNo          QuestionType = "yes_no"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionMultipleSelect QuestionType = "multiple_select"
	QuestionText           QuestionType = "text"
)

// Option is one selectable answer for a question
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Question is a single weighted assessment question
type Question struct {
	ID          core.QuestionID `json:"id"`
	SectionID   core.SectionID  `json:"section_id"`
	Text        string          `json:"text"`
	Type        QuestionType    `json:"type"`
	Weight      int             `json:"weight"`
	ScaleType   ScaleType       `json:"scale_type,omitempty"`
	Explanation string          `json:"explanation,omitempty"`
	Options     []Option        `json:"options,omitempty"`
}

// Section is a domain of the questionnaire with a stable id and weighted questions
type Section struct {
	ID          core.SectionID `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Questions   []Question     `json:"questions"`
}

// Structure is the full parsed question library
type Structure struct {
	Sections []Section `json:"sections"`
}

// FilterBySections returns a copy of the structure limited to the given section ids.
// Unknown ids are ignored; ordering of the library is preserved.
func (s Structure) FilterBySections(ids []core.SectionID) Structure {
	keep := make(map[core.SectionID]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	out := Structure{}
	for _, section := range s.Sections {
		if keep[section.ID] {
			out.Sections = append(out.Sections, section)
		}
	}
	return out
}

// SectionByID looks up a section in the structure
func (s Structure) SectionByID(id core.SectionID) (Section, bool) {
	for _, section := range s.Sections {
		if section.ID == id {
			return section, true
		}
	}
	return Section{}, false
}

// Response is one user answer to a question. Answer holds a single slug for
// yes_no and multiple_choice questions and every chosen slug for
// multiple_select questions.
type Response struct {
	QuestionID core.QuestionID `json:"question_id"`
	Answer     []string        `json:"answer"`
	Comment    string          `json:"comment,omitempty"`
}

// AnswerString flattens the answer for display and hashing. Multi-select
// answers are joined in stored order.
func (r Response) AnswerString() string {
	switch len(r.Answer) {
	case 0:
		return ""
	case 1:
		return r.Answer[0]
	default:
		joined := r.Answer[0]
		for _, a := range r.Answer[1:] {
			joined += ", " + a
		}
		return joined
	}
}

// InputItem is one normalized question/answer pair handed to the analysis
// pipeline. Comment and Context are optional user-authored text and must be
// redacted before leaving the trust boundary.
type InputItem struct {
	QuestionID   core.QuestionID `json:"question_id"`
	QuestionText string          `json:"question_text"`
	Answer       string          `json:"answer"`
	Weight       int             `json:"weight"`
	Comment      string          `json:"comment,omitempty"`
	Context      string          `json:"context,omitempty"`
}

// SectionInput is the ordered list of input items for one section
type SectionInput struct {
	SectionID core.SectionID
	Title     string
	Items     []InputItem
}

// BuildSectionInput joins raw responses against the section's question
// library, preserving question order. Questions without a response are
// skipped; they still count toward the scoring denominator elsewhere.
func BuildSectionInput(section Section, responses map[core.QuestionID]Response) SectionInput {
	input := SectionInput{SectionID: section.ID, Title: section.Title}
	for _, q := range section.Questions {
		resp, ok := responses[q.ID]
		if !ok {
			continue
		}
		input.Items = append(input.Items, InputItem{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			Answer:       resp.AnswerString(),
			Weight:       q.Weight,
			Comment:      resp.Comment,
		})
	}
	return input
}
