package analyses

// Result is the structured resume analysis returned to the caller. Every
// field is required; a response from the model missing any of them is
// replaced wholesale by the fallback result.
type Result struct {
	OverallScore           int      `json:"overall_score"`
	Strengths              []string `json:"strengths"`
	Weaknesses             []string `json:"weaknesses"`
	ATSIssues              []string `json:"ats_issues"`
	RoleAlignmentFeedback  string   `json:"role_alignment_feedback"`
	OptimizedBullets       []string `json:"optimized_bullets"`
	MissingSkills          []string `json:"missing_skills"`
	FinalSuggestions       string   `json:"final_suggestions"`
	OptimizedResumeContent string   `json:"optimized_resume_content"`
}

// FallbackResult is returned when the model call fails or produces output
// that cannot be used. The caller still gets a well-formed Result; cause
// surfaces in final_suggestions for debugging.
func FallbackResult(cause string) Result {
	return Result{
		OverallScore:           0,
		Strengths:              []string{},
		Weaknesses:             []string{"AI Analysis Failed"},
		ATSIssues:              []string{},
		RoleAlignmentFeedback:  "Could not analyze resume due to an error.",
		OptimizedBullets:       []string{},
		MissingSkills:          []string{},
		FinalSuggestions:       "Error: " + cause,
		OptimizedResumeContent: "Could not generate resume.",
	}
}
