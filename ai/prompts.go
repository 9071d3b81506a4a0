// Package ai assembles prompts and drives structured LLM calls for section
// analysis, synthesis and intake recommendations.
package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"postureai/domain/assess"
	"postureai/domain/intake"
)

// PromptVersion tags every generated prompt so cache keys and stored
// artifacts can survive prompt evolution.
const PromptVersion = "v2.1"

// PromptOptions are the enrichment knobs for section prompts
type PromptOptions struct {
	IncludeComments bool
	IncludeContext  bool
	CommentMaxChars int
	ContextMaxChars int
}

func truncate(s string, limit int) string {
	if limit > 0 && len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

// SignalLines renders the numbered Q1..QN lines that the model must
// reference in linked_signals. Comment and context ride along indented
// under their signal when enabled.
func SignalLines(items []assess.InputItem, opts PromptOptions) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "Q%d: %s (weight:%d)\n", i+1, item.Answer, item.Weight)
		if opts.IncludeComments && item.Comment != "" {
			fmt.Fprintf(&b, "   User comment: %s\n", truncate(item.Comment, opts.CommentMaxChars))
		}
		if opts.IncludeContext && item.Context != "" {
			fmt.Fprintf(&b, "   Context: %s\n", truncate(item.Context, opts.ContextMaxChars))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

const sectionSchemaFragment = `{
  "risk_level": "Low|Medium|Medium-High|High|Critical",
  "risk_explanation": "Detailed explanation (120-180 words)",
  "strengths": ["strength1", "strength2", "strength3"],
  "gaps": [
    {
      "gap": "description (25-40 words)",
      "linked_signals": ["Q1", "Q7"],
      "severity": "Low|Medium|High|Critical"
    }
  ],
  "recommendations": [
    {
      "action": "specific action (15-25 words)",
      "rationale": "why this matters (30-50 words)",
      "linked_signals": ["Q3"],
      "effort": "Low|Medium|High",
      "impact": "Low|Medium|High|Critical",
      "timeline": "30-day|60-day|90-day",
      "references": ["NIST CSF PR.AC-1"]
    }
  ],
  "benchmarks": [
    {
      "control": "Multi-Factor Authentication",
      "status": "Implemented|Partial|Missing|Not Applicable",
      "framework": "NIST|ISO|OWASP|CIS",
      "reference": "NIST CSF PR.AC-7"
    }
  ],
  "confidence_score": 0.85
}`

// SectionPrompt builds the JSON-mode analysis prompt for one section.
// curatedContext is the benchmark block, already rendered (may be empty).
func SectionPrompt(section assess.Section, items []assess.InputItem, curatedContext string, opts PromptOptions) string {
	var b strings.Builder

	b.WriteString("Analyze this cybersecurity assessment section and provide comprehensive, structured insights.\n\n")
	fmt.Fprintf(&b, "Section: %s\n", section.Title)
	fmt.Fprintf(&b, "Description: %s\n\n", section.Description)
	b.WriteString("Signals:\n")
	b.WriteString(SignalLines(items, opts))
	b.WriteString("\n")
	if curatedContext != "" {
		b.WriteString(curatedContext)
	}
	b.WriteString("\nProvide your analysis as JSON matching this schema:\n")
	b.WriteString(sectionSchemaFragment)
	b.WriteString("\n\nWORD COUNT REQUIREMENTS (TOTAL: 300-400 WORDS):\n")
	b.WriteString("- risk_explanation: 120-180 words - Provide a comprehensive analysis of the current security posture, specific risks identified, and their potential business impact\n")
	b.WriteString("- strengths: 3-5 items, each 20-30 words - Highlight specific positive security practices with context\n")
	b.WriteString("- gaps: 3-5 items, each gap description 25-40 words - Identify specific security weaknesses with clear explanations\n")
	b.WriteString("- recommendations: 3-5 items, each rationale 30-50 words - Provide actionable guidance with detailed justification\n")
	b.WriteString("\nSTRICT REQUIREMENTS:\n")
	b.WriteString("1. Every gap MUST reference at least one signal (Q1, Q2, etc.) that supports it\n")
	b.WriteString("2. Every recommendation MUST reference the signals it addresses\n")
	fmt.Fprintf(&b, "3. Use exact signal IDs from the list above (Q1-Q%d)\n", len(items))
	b.WriteString("4. Severity levels must match: Critical (score <40%), High (40-60%), Medium (60-80%), Low (>80%)\n")
	b.WriteString("5. Effort estimates: Low (<1 week), Medium (1-4 weeks), High (>1 month)\n")
	b.WriteString("6. Timeline: 30-day for Critical/High, 60-day for Medium, 90-day for Low\n")
	b.WriteString("7. Benchmark status must be based on signals: Missing if answer=No, Partial if answer=Partial, Implemented if answer=Yes\n")
	b.WriteString("8. If any gap has severity \"Critical\", risk_level MUST be \"High\" or \"Critical\"\n")
	b.WriteString("\nProvide detailed, actionable insights that help the organization understand their security posture and prioritize improvements. Be specific and reference industry standards.\n")

	return b.String()
}

// SectionSummary feeds one section's outcome into the synthesis prompt
type SectionSummary struct {
	Title              string
	ScorePercent       float64
	RiskLevel          string
	TopGaps            []string
	TopRecommendations []string
	Degraded           bool
}

// SynthesisPrompt builds the cross-section executive synthesis prompt.
// Degraded sections are annotated so the model does not mistake placeholder
// output for findings.
func SynthesisPrompt(summaries []SectionSummary, overallScorePercent float64, curatedContext string) string {
	var b strings.Builder

	b.WriteString("You are a cybersecurity executive advisor. Analyze these section summaries from a comprehensive security assessment and provide strategic synthesis.\n\n")
	fmt.Fprintf(&b, "OVERALL SECURITY SCORE: %.1f%%\n\n", overallScorePercent)
	b.WriteString("SECTION SUMMARIES:\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "\nSection: %s (Score: %.1f%%)\n", s.Title, s.ScorePercent)
		fmt.Fprintf(&b, "Risk Level: %s\n", s.RiskLevel)
		if s.Degraded {
			b.WriteString("NOTE: Automated analysis for this section was unavailable; rely on the score only.\n")
			continue
		}
		fmt.Fprintf(&b, "Top Gaps: %s\n", strings.Join(capList(s.TopGaps, 3), ", "))
		fmt.Fprintf(&b, "Top Recommendations: %s\n", strings.Join(capList(s.TopRecommendations, 3), ", "))
	}
	if curatedContext != "" {
		b.WriteString(curatedContext)
	}

	b.WriteString(`
Provide your synthesis as JSON matching this schema:

{
  "executive_summary": "2-3 paragraph overview for C-level executives highlighting current posture, key risks, and strategic recommendations",
  "overall_risk_level": "Low|Medium|Medium-High|High|Critical",
  "overall_risk_explanation": "Detailed explanation of overall risk considering all domains",
  "cross_cutting_themes": [
    {
      "theme": "Identity and Access Management Gaps",
      "description": "Detailed description of the theme",
      "affected_domains": ["identity", "access_control", "network"],
      "severity": "High"
    }
  ],
  "top_10_initiatives": [
    {
      "priority": 1,
      "title": "Implement Enterprise-Wide MFA",
      "description": "Deploy multi-factor authentication across all systems and user accounts",
      "affected_domains": ["identity", "access_control"],
      "effort": "Medium",
      "impact": "Critical",
      "timeline": "30-day",
      "dependencies": [],
      "success_metrics": ["100% MFA adoption"],
      "owner": "Security Team"
    }
  ],
  "quick_wins": [
    "Enable MFA for all admin accounts (1 week)"
  ],
  "long_term_strategy": "Strategic direction for next 6-12 months including maturity progression, team building, and program development",
  "confidence_score": 0.85
}

REQUIREMENTS:
1. Executive summary must be business-focused, not technical
2. Identify 3-5 cross-cutting themes that span multiple domains
3. Prioritize initiatives by impact and urgency relative to effort
4. Map dependencies: higher-priority items that must complete before others
5. Success metrics must be specific and measurable
6. Quick wins must be achievable in <30 days with low effort
7. Long-term strategy should align with industry best practices

Keep response professional and actionable for executive audience.
`)

	return b.String()
}

func capList(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// IntakeSystemMessage is the fixed system prompt for intake recommendations
const IntakeSystemMessage = `You are an experienced cybersecurity architect helping organisations decide which security assessment sections are most relevant to them.

You are given:
* A brief user profile (role, organisation size, sector, environment, goals).
* A list of available assessment sections with names, descriptions and tags.

Your task:
* Recommend which sections the user should complete NOW, to get the most value for their time.
* Prioritise sections based on:
  * The user's environment (cloud vs on-prem, OT/ICS, custom apps, etc.).
  * The user's goals (overall posture, compliance, cloud focus, etc.).
  * The time they are willing to spend (quick vs moderate vs deep dive).
* If a section is clearly not applicable (e.g. OT/ICS for a SaaS-only company), call that out in excluded_sections.

You MUST:
* Respond with STRICT, VALID JSON only.
* Use only the section IDs provided.
* Assign each recommended section a priority: "must_do", "should_do" or "optional".
* Provide a short reason for each recommendation or exclusion.
* Set confidence scores between 0.0 and 1.0 for each recommendation.`

// IntakeUserMessage renders the profile and catalogue into the intake
// prompt's user message.
func IntakeUserMessage(profile intake.UserProfile, catalogue intake.Catalogue) (string, error) {
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", err
	}
	sectionsJSON, err := json.MarshalIndent(catalogue, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Here is the user's profile (JSON):\n\n")
	b.Write(profileJSON)
	b.WriteString("\n\nHere are the available assessment sections (JSON):\n\n")
	b.Write(sectionsJSON)
	b.WriteString(`

Based on this user's context, goals and time preference:

1. Recommend which sections they should complete now.
2. Prioritise them as:
   - "must_do" for the most critical ones,
   - "should_do" for important but secondary ones,
   - "optional" for nice-to-have sections.
3. If any sections are clearly not applicable, include them in "excluded_sections" with a reason.

Respond with JSON ONLY in this exact structure:

{
  "recommended_sections": [
    {
      "id": "section_4",
      "priority": "must_do",
      "reason": "Identity and access management is critical for all organisations.",
      "confidence": 0.95
    }
  ],
  "excluded_sections": [
    {
      "id": "section_18",
      "reason": "User does not have OT/ICS or industrial control systems.",
      "confidence": 0.99
    }
  ]
}

No extra text, comments or explanations outside the JSON.`)

	return b.String(), nil
}
