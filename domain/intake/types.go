// Package intake models the discovery questionnaire and the section
// recommendations derived from it.
package intake

import "strings"

// PromptVersion tags intake sessions so recommendation prompts can evolve
// without invalidating stored sessions.
const PromptVersion = "v1"

// TimePreference is how much assessment time the user is willing to spend
type TimePreference string

const (
	TimeQuick    TimePreference = "quick"
	TimeModerate TimePreference = "moderate"
	TimeDeep     TimePreference = "deep"
)

// Item caps applied by the time-budget trim
const (
	quickLimit    = 5
	moderateLimit = 8
)

// Priority ranks a recommended section
type Priority string

const (
	PriorityMustDo   Priority = "must_do"
	PriorityShouldDo Priority = "should_do"
	PriorityOptional Priority = "optional"
)

// Answers is the raw discovery questionnaire submission
type Answers struct {
	Role              string         `json:"role"`
	OrgSize           string         `json:"org_size"`
	Sector            string         `json:"sector"`
	Environment       string         `json:"environment"`
	SystemTypes       []string       `json:"system_types"`
	CloudProviders    []string       `json:"cloud_providers"`
	PrimaryGoal       string         `json:"primary_goal"`
	PrimaryGoalDetail string         `json:"primary_goal_detail,omitempty"`
	TimePreference    TimePreference `json:"time_preference"`
}

// UserProfile is the structured profile derived from intake answers
type UserProfile struct {
	Role              string         `json:"role"`
	OrgSize           string         `json:"org_size"`
	Sector            string         `json:"sector"`
	Environment       string         `json:"environment"`
	SystemTypes       []string       `json:"system_types"`
	HasOTICS          bool           `json:"has_ot_ics"`
	CloudProviders    []string       `json:"cloud_providers"`
	PrimaryGoal       string         `json:"primary_goal"`
	PrimaryGoalDetail string         `json:"primary_goal_detail,omitempty"`
	TimePreference    TimePreference `json:"time_preference"`
}

// NewProfile maps questionnaire answers to a profile. has_ot_ics is the one
// derived fact; everything else carries through.
func NewProfile(a Answers) UserProfile {
	hasOTICS := false
	for _, st := range a.SystemTypes {
		if st == "ot_ics" {
			hasOTICS = true
			break
		}
	}
	return UserProfile{
		Role:              a.Role,
		OrgSize:           a.OrgSize,
		Sector:            a.Sector,
		Environment:       a.Environment,
		SystemTypes:       a.SystemTypes,
		HasOTICS:          hasOTICS,
		CloudProviders:    a.CloudProviders,
		PrimaryGoal:       a.PrimaryGoal,
		PrimaryGoalDetail: a.PrimaryGoalDetail,
		TimePreference:    a.TimePreference,
	}
}

// UsesCloud reports whether any real cloud provider was selected
func (p UserProfile) UsesCloud() bool {
	if len(p.CloudProviders) == 0 {
		return false
	}
	for _, provider := range p.CloudProviders {
		if strings.ToLower(provider) == "none" {
			return false
		}
	}
	return true
}

// HasSystemType reports whether the profile lists the given system type
func (p UserProfile) HasSystemType(st string) bool {
	for _, candidate := range p.SystemTypes {
		if candidate == st {
			return true
		}
	}
	return false
}

// SectionMetadata describes one assessment section to the recommender
type SectionMetadata struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Catalogue is the set of sections available for recommendation
type Catalogue []SectionMetadata

// ByID indexes the catalogue for guardrail lookups
func (c Catalogue) ByID() map[string]SectionMetadata {
	out := make(map[string]SectionMetadata, len(c))
	for _, s := range c {
		out[s.ID] = s
	}
	return out
}

// SectionRecommendation is one recommended section with its rationale
type SectionRecommendation struct {
	ID         string   `json:"id"`
	Priority   Priority `json:"priority"`
	Reason     string   `json:"reason"`
	Confidence float64  `json:"confidence"`
}

// SectionExclusion marks a section as not applicable to the user
type SectionExclusion struct {
	ID         string  `json:"id"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// RecommendationSet is the recommender output, before or after guardrails
type RecommendationSet struct {
	Recommended []SectionRecommendation `json:"recommended_sections"`
	Excluded    []SectionExclusion      `json:"excluded_sections"`
}

// RecommendedIDs returns the recommended section ids in order
func (r RecommendationSet) RecommendedIDs() []string {
	ids := make([]string, 0, len(r.Recommended))
	for _, rec := range r.Recommended {
		ids = append(ids, rec.ID)
	}
	return ids
}
