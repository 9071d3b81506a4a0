package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"postureai/domain/artifact"
	"postureai/domain/core"
	"postureai/domain/intake"
)

// cleanJSONContent strips markdown code fences and any chatter lines the
// model emits around the JSON object. Models occasionally wrap JSON-mode
// output anyway, so decoding always passes through here first.
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		var kept []string
		inFence := false
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "```") {
				inFence = !inFence
				continue
			}
			if inFence {
				kept = append(kept, line)
			}
		}
		if len(kept) > 0 {
			content = strings.Join(kept, "\n")
		}
	}

	// Drop leading chatter before the first brace and anything after the
	// matching close.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return strings.TrimSpace(content)
}

// DecodeSectionArtifact parses and cleans a model reply into a section
// artifact. Decode failures surface as schema violations so the runner
// treats them as retriable.
func DecodeSectionArtifact(content string) (*artifact.SectionArtifact, error) {
	cleaned := cleanJSONContent(content)
	if cleaned == "" {
		return nil, core.ErrEmptyResponse
	}
	var out artifact.SectionArtifact
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("%w: decode section artifact: %v", core.ErrSchemaViolation, err)
	}
	if out.SchemaVersion == "" {
		out.SchemaVersion = artifact.SectionSchemaVersion
	}
	return &out, nil
}

// DecodeSynthesisArtifact parses a model reply into a synthesis artifact
func DecodeSynthesisArtifact(content string) (*artifact.SynthesisArtifact, error) {
	cleaned := cleanJSONContent(content)
	if cleaned == "" {
		return nil, core.ErrEmptyResponse
	}
	var out artifact.SynthesisArtifact
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("%w: decode synthesis artifact: %v", core.ErrSchemaViolation, err)
	}
	if out.SchemaVersion == "" {
		out.SchemaVersion = artifact.SynthesisSchemaVersion
	}
	return &out, nil
}

// DecodeRecommendationSet parses the intake model reply
func DecodeRecommendationSet(content string) (*intake.RecommendationSet, error) {
	cleaned := cleanJSONContent(content)
	if cleaned == "" {
		return nil, core.ErrEmptyResponse
	}
	var out intake.RecommendationSet
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("%w: decode recommendation set: %v", core.ErrSchemaViolation, err)
	}
	if len(out.Recommended) == 0 {
		return nil, fmt.Errorf("%w: recommendation set has no sections", core.ErrSchemaViolation)
	}
	return &out, nil
}
