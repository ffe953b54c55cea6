package analyses

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resume-optimizer/internal/shared/server/middleware"
	"resume-optimizer/internal/shared/server/respond"
	"resume-optimizer/internal/shared/telemetry"
	"resume-optimizer/internal/usage"
)

// maxUploadBytes caps the uploaded resume size.
const maxUploadBytes = 10 << 20

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes mounts the analysis endpoints on an authenticated group.
func (h *Handler) RegisterRoutes(r gin.IRoutes, limiter *middleware.RateLimiter) {
	r.POST("/analyze-resume", middleware.RateLimit(limiter), h.analyzeResume)
	r.GET("/analyses", h.listAnalyses)
	r.GET("/analyses/:id", h.getAnalysis)
}

func (h *Handler) analyzeResume(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	// Parse the form up front; this is where an oversized body surfaces.
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "uploaded file exceeds the size limit", nil)
			return
		}
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "request must be multipart/form-data", nil)
		return
	}

	targetRole := c.PostForm("target_role")
	if targetRole == "" {
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "target_role is required", nil)
		return
	}

	fileHeader, err := c.FormFile("resume_file")
	if err != nil {
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "resume_file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "could not open uploaded file", nil)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "could not read uploaded file", nil)
		return
	}

	resp, err := h.Svc.Analyze(c.Request.Context(), AnalyzeRequest{
		UserID:          userID,
		Filename:        fileHeader.Filename,
		FileContent:     content,
		TargetRole:      targetRole,
		JobDescription:  c.PostForm("job_description"),
		ExperienceLevel: c.PostForm("experience_level"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	respond.OK(c, resp.Result)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}

	limit := intQuery(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := intQuery(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	records, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		telemetry.Error("analyses.list_failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "could not list analyses", nil)
		return
	}

	items := make([]analysisSummary, 0, len(records))
	for _, rec := range records {
		items = append(items, summarize(rec))
	}
	respond.List(c, items, limit, offset)
}

func (h *Handler) getAnalysis(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}

	rec, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, usage.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
			return
		}
		telemetry.Error("analyses.get_failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "could not load analysis", nil)
		return
	}

	respond.OK(c, gin.H{
		"id":         rec.ID,
		"created_at": rec.CreatedAt,
		"result":     rec.Result,
	})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Kind == KindInternal {
			telemetry.Error("analyses.analyze_failed", map[string]any{"error": apiErr.Error()})
		}
		respond.Error(c, apiErr.Kind.Status(), apiErr.Kind.Code(), apiErr.Message, nil)
		return
	}
	telemetry.Error("analyses.analyze_failed", map[string]any{"error": err.Error()})
	respond.Error(c, http.StatusInternalServerError, "internal_error", "analysis failed", nil)
}

type analysisSummary struct {
	ID           string          `json:"id"`
	CreatedAt    string          `json:"created_at"`
	OverallScore json.RawMessage `json:"overall_score"`
}

func summarize(rec usage.AnalysisRecord) analysisSummary {
	score := json.RawMessage("null")
	var partial struct {
		OverallScore json.RawMessage `json:"overall_score"`
	}
	if err := json.Unmarshal(rec.Result, &partial); err == nil && len(partial.OverallScore) > 0 {
		score = partial.OverallScore
	}
	return analysisSummary{
		ID:           rec.ID,
		CreatedAt:    rec.CreatedAt.UTC().Format(time.RFC3339),
		OverallScore: score,
	}
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
