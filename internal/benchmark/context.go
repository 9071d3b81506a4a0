// Package benchmark provides curated industry-control snippets that ground
// the section prompts in recognizable frameworks.
package benchmark

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"postureai/internal/errors"
)

//go:embed benchmarks.yaml
var benchmarksYAML []byte

type control struct {
	ID          string   `yaml:"id"`
	Control     string   `yaml:"control"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
}

type library struct {
	NISTCSF     map[string][]control `yaml:"nist_csf"`
	ISO27001    map[string][]control `yaml:"iso_27001"`
	OWASPTop10  []control            `yaml:"owasp_top_10"`
	CISControls []control            `yaml:"cis_controls"`
}

// MatchedControl is one framework control relevant to a section
type MatchedControl struct {
	Framework   string
	ID          string
	Control     string
	Description string
}

// Service matches section text against the embedded control library
type Service struct {
	lib library
}

// NewService parses the embedded benchmark library
func NewService() (*Service, error) {
	var lib library
	if err := yaml.Unmarshal(benchmarksYAML, &lib); err != nil {
		return nil, errors.Wrap(err, "failed to parse benchmark library")
	}
	return &Service{lib: lib}, nil
}

// extractKeywords keeps lowercase words longer than three characters
func extractKeywords(text string) map[string]bool {
	keywords := make(map[string]bool)
	for _, word := range strings.Fields(text) {
		if len(word) > 3 {
			keywords[strings.ToLower(word)] = true
		}
	}
	return keywords
}

func matches(c control, keywords map[string]bool) bool {
	for _, kw := range c.Keywords {
		if keywords[kw] {
			return true
		}
	}
	return false
}

// RelevantControls returns up to maxControls framework controls whose
// keywords appear in the section title or description. Framework order is
// fixed: NIST CSF, ISO 27001, OWASP, CIS.
func (s *Service) RelevantControls(sectionTitle, sectionDescription string, maxControls int) []MatchedControl {
	keywords := extractKeywords(sectionTitle + " " + sectionDescription)

	var out []MatchedControl
	appendMatches := func(framework string, controls []control) {
		for _, c := range controls {
			if matches(c, keywords) {
				out = append(out, MatchedControl{
					Framework:   framework,
					ID:          c.ID,
					Control:     c.Control,
					Description: c.Description,
				})
			}
		}
	}

	for _, category := range sortedKeys(s.lib.NISTCSF) {
		appendMatches("NIST CSF", s.lib.NISTCSF[category])
	}
	for _, category := range sortedKeys(s.lib.ISO27001) {
		appendMatches("ISO 27001", s.lib.ISO27001[category])
	}
	appendMatches("OWASP Top 10", s.lib.OWASPTop10)
	appendMatches("CIS Controls", s.lib.CISControls)

	if len(out) > maxControls {
		out = out[:maxControls]
	}
	return out
}

// sortedKeys gives a stable category walk order
func sortedKeys(m map[string][]control) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ContextBlock renders matched controls as a prompt fragment. Returns the
// empty string when nothing matched.
func (s *Service) ContextBlock(sectionTitle, sectionDescription string, maxControls int) string {
	controls := s.RelevantControls(sectionTitle, sectionDescription, maxControls)
	if len(controls) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nRELEVANT INDUSTRY CONTROLS:\n")
	for _, c := range controls {
		fmt.Fprintf(&b, "\n%s %s: %s\n", c.Framework, c.ID, c.Control)
		fmt.Fprintf(&b, "  - %s\n", c.Description)
	}
	b.WriteString("\nUse these controls as benchmarks in your analysis.\n")
	return b.String()
}
