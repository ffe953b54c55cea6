package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-optimizer/internal/extract"
	"resume-optimizer/internal/llm"
	"resume-optimizer/internal/shared/metrics"
	"resume-optimizer/internal/shared/telemetry"
	"resume-optimizer/internal/usage"
)

// AnalyzeRequest carries the validated inputs of one analyze call.
type AnalyzeRequest struct {
	UserID          string
	Filename        string
	FileContent     []byte
	TargetRole      string
	JobDescription  string
	ExperienceLevel string
}

// AnalyzeResponse is the successful outcome. Record holds the persisted
// ledger entry; Result is returned to the client exactly as stored.
type AnalyzeResponse struct {
	Record   usage.AnalysisRecord
	Result   Result
	Degraded bool
}

// Service orchestrates the analyze pipeline: quota gate, file validation,
// text extraction, model call, and durable recording.
type Service struct {
	Usage    *usage.Service
	Analyzer *Analyzer
	Metrics  *metrics.Collector
}

func NewService(usageSvc *usage.Service, analyzer *Analyzer, collector *metrics.Collector) *Service {
	return &Service{Usage: usageSvc, Analyzer: analyzer, Metrics: collector}
}

// Analyze runs the full pipeline for one uploaded resume. Failures return a
// typed *Error carrying the kind that maps to the response status; a model
// failure is not a pipeline failure and yields a degraded response instead.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, error) {
	start := time.Now()

	// Cheap admission test before touching the file. The store re-checks
	// inside a transaction when the record is written, so a race here can
	// only reject, never oversubscribe.
	ok, count, err := s.Usage.CanConsume(ctx, req.UserID)
	if err != nil {
		return AnalyzeResponse{}, newError(KindInternal, "usage lookup failed", err)
	}
	if !ok {
		s.Metrics.RecordRejected("quota")
		return AnalyzeResponse{}, newError(KindQuotaExceeded, fmt.Sprintf(msgLimitReached, s.Usage.Limit()), nil)
	}

	kind, ok := extract.KindForFilename(req.Filename)
	if !ok {
		s.Metrics.RecordRejected("format")
		return AnalyzeResponse{}, newError(KindUnsupportedFormat, msgInvalidFormat, nil)
	}
	if len(req.FileContent) == 0 {
		s.Metrics.RecordRejected("empty")
		return AnalyzeResponse{}, newError(KindEmptyFile, msgEmptyFile, nil)
	}

	text, err := extract.Text(req.FileContent, kind)
	if err != nil {
		s.Metrics.RecordRejected("parse")
		return AnalyzeResponse{}, newError(KindParseFailure, "Failed to read the uploaded file.", err)
	}

	s.Metrics.RecordStarted()
	result, outcome := s.Analyzer.Analyze(ctx, llm.AnalyzeInput{
		ResumeText:      text,
		TargetRole:      req.TargetRole,
		JobDescription:  req.JobDescription,
		ExperienceLevel: req.ExperienceLevel,
	})

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return AnalyzeResponse{}, newError(KindInternal, "result encoding failed", err)
	}

	rec, err := s.Usage.Record(ctx, req.UserID, text, resultJSON)
	if err != nil {
		if errors.Is(err, usage.ErrLimitReached) {
			// Lost the race to a concurrent request for the last slot.
			s.Metrics.RecordRejected("quota")
			return AnalyzeResponse{}, newError(KindQuotaExceeded, fmt.Sprintf(msgLimitReached, s.Usage.Limit()), nil)
		}
		return AnalyzeResponse{}, newError(KindInternal, "failed to record analysis", err)
	}

	if outcome.Degraded {
		s.Metrics.RecordDegraded()
	} else {
		s.Metrics.RecordCompleted()
	}
	s.Metrics.RecordDuration(time.Since(start))

	telemetry.Info("analysis.recorded", map[string]any{
		"userId":   req.UserID,
		"recordId": rec.ID,
		"degraded": outcome.Degraded,
		"usage":    count + 1,
	})

	return AnalyzeResponse{Record: rec, Result: result, Degraded: outcome.Degraded}, nil
}

// Get returns one stored analysis owned by the user.
func (s *Service) Get(ctx context.Context, userID, recordID string) (usage.AnalysisRecord, error) {
	return s.Usage.GetByID(ctx, userID, recordID)
}

// List returns the user's stored analyses newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]usage.AnalysisRecord, error) {
	return s.Usage.ListForUser(ctx, userID, limit, offset)
}
