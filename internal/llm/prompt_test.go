package llm

import (
	"strings"
	"testing"
)

func TestBuildPromptDeterministic(t *testing.T) {
	input := AnalyzeInput{
		ResumeText:      "Jane Doe\nSoftware Engineer",
		TargetRole:      "Backend Engineer",
		JobDescription:  "Build Go services",
		ExperienceLevel: "Senior",
	}

	first := BuildPrompt(input)
	second := BuildPrompt(input)
	if first != second {
		t.Fatal("expected identical inputs to produce byte-identical prompts")
	}
}

func TestBuildPromptEmbedsInputsVerbatim(t *testing.T) {
	input := AnalyzeInput{
		ResumeText:      "resume body text",
		TargetRole:      "Data Scientist",
		JobDescription:  "ML pipelines",
		ExperienceLevel: "Mid",
	}

	prompt := BuildPrompt(input)
	for _, want := range []string{
		"Job Role: Data Scientist",
		"Job Description: ML pipelines",
		"Experience Level: Mid",
		"resume body text",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q", want)
		}
	}
}

func TestBuildPromptOptionalPlaceholders(t *testing.T) {
	prompt := BuildPrompt(AnalyzeInput{
		ResumeText: "text",
		TargetRole: "PM",
	})

	if !strings.Contains(prompt, "Job Description: Not provided") {
		t.Fatal("expected missing job description to render as \"Not provided\"")
	}
	if !strings.Contains(prompt, "Experience Level: Not specified") {
		t.Fatal("expected missing experience level to render as \"Not specified\"")
	}
}

func TestBuildPromptSpecifiesOutputSchema(t *testing.T) {
	prompt := BuildPrompt(AnalyzeInput{ResumeText: "text", TargetRole: "SRE"})

	for _, field := range []string{
		"overall_score",
		"strengths",
		"weaknesses",
		"ats_issues",
		"role_alignment_feedback",
		"optimized_bullets",
		"missing_skills",
		"final_suggestions",
		"optimized_resume_content",
	} {
		if !strings.Contains(prompt, `"`+field+`"`) {
			t.Fatalf("expected prompt schema to name field %q", field)
		}
	}
}
