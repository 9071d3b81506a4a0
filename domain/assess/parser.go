package assess

import (
	"regexp"
	"strconv"
	"strings"

	"postureai/domain/core"
)

var (
	sectionRe     = regexp.MustCompile(`^## Section (\d+): (.+)`)
	questionRe    = regexp.MustCompile(`^#### Question (.+)`)
	optionRe      = regexp.MustCompile(`^\*\*Option (\d+): (.+?)\*\*`)
	optionAltRe   = regexp.MustCompile(`^\*\*Option (\d+):\*\* (.+)`)
	scaleMarkerRe = regexp.MustCompile(`^\*\*Scale:\*\*\s*(\S+)`)
)

// ParseStructure parses the markdown question library into the assessment
// structure. The format is heading-driven: "## Section N: Title" opens a
// section, "#### Question N.N.N" opens a question, and bold markers carry
// question text, type, weight, scale and options.
func ParseStructure(md string) Structure {
	var (
		sections        []Section
		currentSection  *Section
		currentQuestion *Question
	)

	flushQuestion := func() {
		if currentQuestion != nil && currentSection != nil {
			currentSection.Questions = append(currentSection.Questions, *currentQuestion)
		}
		currentQuestion = nil
	}
	flushSection := func() {
		flushQuestion()
		if currentSection != nil {
			sections = append(sections, *currentSection)
		}
		currentSection = nil
	}

	lines := strings.Split(md, "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if m := sectionRe.FindStringSubmatch(line); m != nil {
			flushSection()
			currentSection = &Section{
				ID:    core.SectionID("section_" + m[1]),
				Title: m[2],
			}
			continue
		}

		if m := questionRe.FindStringSubmatch(line); m != nil {
			flushQuestion()
			sectionID := core.SectionID("unknown")
			if currentSection != nil {
				sectionID = currentSection.ID
			}
			currentQuestion = &Question{
				ID:        core.QuestionID(strings.ReplaceAll(m[1], ".", "_")),
				SectionID: sectionID,
				Type:      QuestionMultipleChoice,
				Weight:    1,
			}
			continue
		}

		if currentSection != nil && currentQuestion == nil && line != "" &&
			!strings.HasPrefix(line, "#") && currentSection.Description == "" {
			currentSection.Description = line
			continue
		}

		if currentQuestion == nil {
			continue
		}

		switch {
		case strings.HasPrefix(line, "**Question:**"):
			currentQuestion.Text = strings.TrimSpace(strings.TrimPrefix(line, "**Question:**"))
		case strings.HasPrefix(line, "**Type:**"):
			currentQuestion.Type = QuestionType(strings.TrimSpace(strings.TrimPrefix(line, "**Type:**")))
		case strings.HasPrefix(line, "**Weight:**"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "**Weight:**"))
			if w, err := strconv.Atoi(raw); err == nil {
				currentQuestion.Weight = w
			}
		case strings.HasPrefix(line, "**Explanation:**"):
			currentQuestion.Explanation = strings.TrimSpace(strings.TrimPrefix(line, "**Explanation:**"))
		case scaleMarkerRe.MatchString(line):
			m := scaleMarkerRe.FindStringSubmatch(line)
			currentQuestion.ScaleType = ScaleType(m[1])
		default:
			m := optionRe.FindStringSubmatch(line)
			if m == nil {
				m = optionAltRe.FindStringSubmatch(line)
			}
			if m != nil {
				currentQuestion.Options = append(currentQuestion.Options, Option{
					Value:       NormalizeOption(m[2]),
					Label:       m[2],
					Description: collectOptionDescription(lines, i+1),
				})
			}
		}
	}
	flushSection()

	return Structure{Sections: sections}
}

// collectOptionDescription scans forward for the option's plain description,
// stopping at the next bold marker or heading.
func collectOptionDescription(lines []string, start int) string {
	for j := start; j < len(lines); j++ {
		line := strings.TrimSpace(lines[j])
		if strings.HasPrefix(line, "**") || strings.HasPrefix(line, "####") {
			return ""
		}
		if line == "" || strings.HasPrefix(line, "*Note:") {
			continue
		}
		if strings.HasPrefix(line, "*Basic Description:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "*Basic Description:"))
		}
		if !strings.HasPrefix(line, "*") {
			return line
		}
	}
	return ""
}
