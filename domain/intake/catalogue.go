package intake

// DefaultCatalogue lists the assessment sections the recommender can choose
// from. Ids must match the question library's section slugs.
func DefaultCatalogue() Catalogue {
	return Catalogue{
		{
			ID:          "section_1",
			Name:        "Governance",
			Description: "Security governance, policies, roles and accountability.",
			Tags:        []string{"governance", "policy"},
		},
		{
			ID:          "section_2",
			Name:        "Risk Management",
			Description: "Risk identification, assessment and treatment processes.",
			Tags:        []string{"risk", "governance"},
		},
		{
			ID:          "section_4",
			Name:        "Identity & Access Management",
			Description: "Authentication, authorization, privileged access and account lifecycle.",
			Tags:        []string{"iam", "identity", "access"},
		},
		{
			ID:          "section_7",
			Name:        "Data Protection",
			Description: "Data classification, encryption, retention and privacy controls.",
			Tags:        []string{"data", "privacy", "encryption"},
		},
		{
			ID:          "section_8",
			Name:        "Application Security",
			Description: "Secure development, dependency management and application testing.",
			Tags:        []string{"applications", "sdlc", "web"},
		},
		{
			ID:          "section_9",
			Name:        "Cloud Security",
			Description: "Cloud configuration, workload protection and provider controls.",
			Tags:        []string{"cloud", "aws", "azure", "gcp"},
		},
		{
			ID:          "section_10",
			Name:        "Incident Response",
			Description: "Detection, response planning, playbooks and post-incident review.",
			Tags:        []string{"incident", "detection", "response"},
		},
		{
			ID:          "section_18",
			Name:        "OT/ICS Security",
			Description: "Operational technology and industrial control system security.",
			Tags:        []string{"ot", "ics", "industrial"},
		},
	}
}
