package llm

import (
	_ "embed"
	"strings"
)

//go:embed prompts/analysis.txt
var analysisTemplate string

const (
	jobDescriptionNotProvided   = "Not provided"
	experienceLevelNotSpecified = "Not specified"
)

// BuildPrompt renders the instruction payload for an analysis call. All four
// inputs are embedded verbatim into a fixed template; optional inputs render
// as explicit placeholders so the template structure is constant. Identical
// inputs produce byte-identical output.
func BuildPrompt(input AnalyzeInput) string {
	jobDescription := input.JobDescription
	if strings.TrimSpace(jobDescription) == "" {
		jobDescription = jobDescriptionNotProvided
	}
	experienceLevel := input.ExperienceLevel
	if strings.TrimSpace(experienceLevel) == "" {
		experienceLevel = experienceLevelNotSpecified
	}

	replacer := strings.NewReplacer(
		"{{TARGET_ROLE}}", input.TargetRole,
		"{{JOB_DESCRIPTION}}", jobDescription,
		"{{EXPERIENCE_LEVEL}}", experienceLevel,
		"{{RESUME_TEXT}}", input.ResumeText,
	)
	return replacer.Replace(analysisTemplate)
}
