package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resume-optimizer/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := &Client{
		apiKey:     "test-key",
		model:      "llama-3.3-70b-versatile",
		apiURL:     srv.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
	return client, srv
}

func TestAnalyzeResumeReturnsContent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResponseFormat.Type != "json_object" {
			t.Errorf("expected json_object response format, got %q", req.ResponseFormat.Type)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "CareerForgeAI") {
			t.Error("expected a single user message carrying the analysis prompt")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"overall_score\":80}"}}]}`))
	})

	raw, err := client.AnalyzeResume(context.Background(), llm.AnalyzeInput{
		ResumeText: "resume",
		TargetRole: "Engineer",
	})
	if err != nil {
		t.Fatalf("AnalyzeResume: %v", err)
	}
	if !json.Valid(raw) {
		t.Fatalf("expected valid JSON, got %q", string(raw))
	}
}

func TestAnalyzeResumeProviderError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	})

	_, err := client.AnalyzeResume(context.Background(), llm.AnalyzeInput{ResumeText: "x", TargetRole: "y"})
	if err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("expected provider error to surface, got %v", err)
	}
}

func TestAnalyzeResumeMissingChoices(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.AnalyzeResume(context.Background(), llm.AnalyzeInput{ResumeText: "x", TargetRole: "y"})
	if err == nil || !strings.Contains(err.Error(), "missing choices") {
		t.Fatalf("expected missing choices error, got %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "model"); err == nil {
		t.Fatal("expected error for empty api key")
	}
	if _, err := NewClient("key", ""); err == nil {
		t.Fatal("expected error for empty model")
	}
}
