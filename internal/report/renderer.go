// Package report renders persisted analysis artifacts into a markdown
// document and an HTML preview of it.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	mdparser "github.com/gomarkdown/markdown/parser"

	"postureai/domain/artifact"
	"postureai/domain/assess"
	"postureai/domain/core"
	"postureai/internal/errors"
	"postureai/models"
)

// Renderer turns section and synthesis artifacts into report documents
type Renderer struct{}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Markdown builds the full report document from stored artifact rows.
// Sections are ordered by section id; a missing synthesis row produces a
// document without the executive portion. blindSpots is the unknown-answer
// digest from generation and may be nil when only stored artifacts are
// available.
func (r *Renderer) Markdown(sections []models.SectionArtifactRow, synthesis *models.SynthesisArtifactRow, blindSpots *assess.BlindSpotDigest) (string, error) {
	var b strings.Builder
	b.WriteString("# Security Posture Assessment\n\n")

	if synthesis != nil {
		var synth artifact.SynthesisArtifact
		if err := json.Unmarshal(synthesis.ArtifactJSON, &synth); err != nil {
			return "", errors.Wrap(err, "failed to decode synthesis artifact")
		}
		writeSynthesis(&b, synth)
	}

	if blindSpots != nil && blindSpots.TotalCount > 0 {
		writeBlindSpots(&b, *blindSpots)
	}

	ordered := make([]models.SectionArtifactRow, len(sections))
	copy(ordered, sections)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].SectionID < ordered[j].SectionID })

	for _, row := range ordered {
		var sec artifact.SectionArtifact
		if err := json.Unmarshal(row.ArtifactJSON, &sec); err != nil {
			return "", errors.Wrap(err, fmt.Sprintf("failed to decode artifact for %s", row.SectionID))
		}
		writeSection(&b, row.SectionID, sec)
	}

	return b.String(), nil
}

// HTML renders the markdown document for browser preview
func (r *Renderer) HTML(sections []models.SectionArtifactRow, synthesis *models.SynthesisArtifactRow, blindSpots *assess.BlindSpotDigest) ([]byte, error) {
	md, err := r.Markdown(sections, synthesis, blindSpots)
	if err != nil {
		return nil, err
	}
	p := mdparser.NewWithExtensions(mdparser.CommonExtensions | mdparser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return markdown.Render(doc, renderer), nil
}

func writeSynthesis(b *strings.Builder, s artifact.SynthesisArtifact) {
	b.WriteString("## Executive Summary\n\n")
	b.WriteString(s.ExecutiveSummary)
	b.WriteString("\n\n")
	fmt.Fprintf(b, "**Overall Risk: %s**\n\n", s.OverallRiskLevel)
	if s.OverallRiskExplanation != "" {
		b.WriteString(s.OverallRiskExplanation)
		b.WriteString("\n\n")
	}

	if len(s.CrossCuttingThemes) > 0 {
		b.WriteString("### Cross-Cutting Themes\n\n")
		for _, t := range s.CrossCuttingThemes {
			fmt.Fprintf(b, "- **%s** (%s): %s\n", t.Theme, t.Severity, t.Description)
		}
		b.WriteString("\n")
	}

	if len(s.Top10Initiatives) > 0 {
		b.WriteString("### Prioritized Roadmap\n\n")
		ordered := make([]artifact.Initiative, len(s.Top10Initiatives))
		copy(ordered, s.Top10Initiatives)
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })
		for _, init := range ordered {
			fmt.Fprintf(b, "%d. **%s** (effort: %s, impact: %s, timeline: %s)\n", init.Priority, init.Title, init.Effort, init.Impact, init.Timeline)
			if init.Description != "" {
				fmt.Fprintf(b, "   %s\n", init.Description)
			}
		}
		b.WriteString("\n")
	}

	if len(s.QuickWins) > 0 {
		b.WriteString("### Quick Wins\n\n")
		for _, w := range s.QuickWins {
			fmt.Fprintf(b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	if s.LongTermStrategy != "" {
		b.WriteString("### Long-Term Strategy\n\n")
		b.WriteString(s.LongTermStrategy)
		b.WriteString("\n\n")
	}
}

func writeBlindSpots(b *strings.Builder, digest assess.BlindSpotDigest) {
	b.WriteString("## Assessment Blind Spots\n\n")
	fmt.Fprintf(b, "%d question(s) were answered with \"unknown\", lowering confidence in the affected areas:\n\n", digest.TotalCount)

	ids := make([]core.SectionID, 0, len(digest.BySection))
	for id := range digest.BySection {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		spots := digest.BySection[id]
		title := sectionTitle(id.String())
		if len(spots.Items) > 0 && spots.Items[0].SectionTitle != "" {
			title = spots.Items[0].SectionTitle
		}
		fmt.Fprintf(b, "- **%s**: %d unknown answer(s)\n", title, spots.Count)
		for _, item := range spots.Items {
			if item.QuestionText != "" {
				fmt.Fprintf(b, "  - %s\n", item.QuestionText)
			}
		}
	}
	b.WriteString("\n")
}

func writeSection(b *strings.Builder, sectionID string, s artifact.SectionArtifact) {
	fmt.Fprintf(b, "## %s\n\n", sectionTitle(sectionID))
	fmt.Fprintf(b, "**Risk Level: %s** (confidence %.2f)\n\n", s.RiskLevel, s.ConfidenceScore)
	if s.RiskExplanation != "" {
		b.WriteString(s.RiskExplanation)
		b.WriteString("\n\n")
	}

	if len(s.Strengths) > 0 {
		b.WriteString("### Strengths\n\n")
		for _, st := range s.Strengths {
			fmt.Fprintf(b, "- %s\n", st)
		}
		b.WriteString("\n")
	}

	if len(s.Gaps) > 0 {
		b.WriteString("### Gaps\n\n")
		for _, g := range s.Gaps {
			fmt.Fprintf(b, "- **%s**: %s\n", g.Severity, g.Gap)
		}
		b.WriteString("\n")
	}

	if len(s.Recommendations) > 0 {
		b.WriteString("### Recommendations\n\n")
		for _, rec := range s.Recommendations {
			fmt.Fprintf(b, "- **%s** (effort: %s, impact: %s, timeline: %s)\n", rec.Action, rec.Effort, rec.Impact, rec.Timeline)
			if rec.Rationale != "" {
				fmt.Fprintf(b, "  %s\n", rec.Rationale)
			}
		}
		b.WriteString("\n")
	}

	if len(s.Benchmarks) > 0 {
		b.WriteString("### Benchmark Comparison\n\n")
		b.WriteString("| Control | Status | Framework |\n|---|---|---|\n")
		for _, bench := range s.Benchmarks {
			fmt.Fprintf(b, "| %s | %s | %s |\n", bench.Control, bench.Status, bench.Framework)
		}
		b.WriteString("\n")
	}
}

// sectionTitle derives a heading from a section id like "section_4"
func sectionTitle(sectionID string) string {
	trimmed := strings.TrimPrefix(sectionID, "section_")
	if trimmed != sectionID {
		return "Section " + trimmed
	}
	return sectionID
}
