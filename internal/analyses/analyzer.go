package analyses

import (
	"context"
	"encoding/json"

	"resume-optimizer/internal/llm"
	"resume-optimizer/internal/shared/telemetry"
)

// Outcome describes how an analysis result was produced. Degraded means the
// model call failed or returned unusable output and the fallback result was
// substituted; the request itself still succeeds.
type Outcome struct {
	Degraded bool
	Cause    error
}

// Analyzer wraps the model client so a failed call never reaches the
// caller as an error. Every invocation yields a complete Result.
type Analyzer struct {
	Client llm.Client
}

func NewAnalyzer(client llm.Client) *Analyzer {
	return &Analyzer{Client: client}
}

// Analyze runs the model and validates its output. Any failure, from
// transport errors to a well-formed JSON object missing required fields,
// degrades to FallbackResult.
func (a *Analyzer) Analyze(ctx context.Context, input llm.AnalyzeInput) (Result, Outcome) {
	raw, err := a.Client.AnalyzeResume(ctx, input)
	if err != nil {
		telemetry.Warn("llm.call_failed", map[string]any{"error": err.Error()})
		return FallbackResult(err.Error()), Outcome{Degraded: true, Cause: err}
	}

	result, err := decodeResult(raw)
	if err != nil {
		telemetry.Warn("llm.bad_response", map[string]any{"error": err.Error()})
		return FallbackResult(err.Error()), Outcome{Degraded: true, Cause: err}
	}
	return result, Outcome{}
}

// decodeResult parses the raw model output and rejects objects missing any
// required field. Extra fields from the model are tolerated, absent ones
// are not.
func decodeResult(raw json.RawMessage) (Result, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Result{}, &badResponseError{reason: "response is not a JSON object", cause: err}
	}
	required := []string{
		"overall_score",
		"strengths",
		"weaknesses",
		"ats_issues",
		"role_alignment_feedback",
		"optimized_bullets",
		"missing_skills",
		"final_suggestions",
		"optimized_resume_content",
	}
	for _, field := range required {
		if _, ok := probe[field]; !ok {
			return Result{}, &badResponseError{reason: "response missing field " + field}
		}
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, &badResponseError{reason: "response fields have wrong types", cause: err}
	}
	return result, nil
}

type badResponseError struct {
	reason string
	cause  error
}

func (e *badResponseError) Error() string {
	if e.cause != nil {
		return e.reason + ": " + e.cause.Error()
	}
	return e.reason
}

func (e *badResponseError) Unwrap() error { return e.cause }
