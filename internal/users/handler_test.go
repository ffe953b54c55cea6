package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-optimizer/internal/shared/auth"
	"resume-optimizer/internal/shared/server/middleware"
)

type fixedUsage struct {
	count int
}

func (f fixedUsage) CountForUser(context.Context, string) (int, error) {
	return f.count, nil
}

func newTestRouter(t *testing.T, usageCount int) (*gin.Engine, *auth.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	h := NewHandler(NewService(NewMemoryRepo()), tokens, fixedUsage{count: usageCount})

	r := gin.New()
	public := r.Group("/api")
	h.RegisterAuthRoutes(public)
	authed := r.Group("/api", middleware.Auth(tokens))
	h.RegisterRoutes(authed)
	return r, tokens
}

func signupJSON(t *testing.T, r *gin.Engine, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func tokenForm(t *testing.T, r *gin.Engine, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func accessToken(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	if resp.TokenType != "bearer" {
		t.Fatalf("expected token_type bearer, got %q", resp.TokenType)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected non-empty access_token")
	}
	return resp.AccessToken
}

func TestSignupIssuesToken(t *testing.T) {
	r, tokens := newTestRouter(t, 0)

	w := signupJSON(t, r, "user@example.com", "hunter22")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	token := accessToken(t, w)

	id, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if id.Email != "user@example.com" {
		t.Fatalf("unexpected identity email %q", id.Email)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	r, _ := newTestRouter(t, 0)

	if w := signupJSON(t, r, "user@example.com", "hunter22"); w.Code != http.StatusOK {
		t.Fatalf("first signup: expected 200, got %d", w.Code)
	}

	w := signupJSON(t, r, "user@example.com", "different")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Error.Message != "Email already registered" {
		t.Fatalf("unexpected message %q", resp.Error.Message)
	}
}

func TestSignupMissingFields(t *testing.T) {
	r, _ := newTestRouter(t, 0)

	w := signupJSON(t, r, "user@example.com", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestTokenValidCredentials(t *testing.T) {
	r, _ := newTestRouter(t, 0)
	signupJSON(t, r, "user@example.com", "hunter22")

	w := tokenForm(t, r, "user@example.com", "hunter22")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	accessToken(t, w)
}

func TestTokenWrongPassword(t *testing.T) {
	r, _ := newTestRouter(t, 0)
	signupJSON(t, r, "user@example.com", "hunter22")

	for _, tc := range []struct{ username, password string }{
		{"user@example.com", "wrong"},
		{"nobody@example.com", "hunter22"},
	} {
		w := tokenForm(t, r, tc.username, tc.password)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", tc.username, w.Code)
		}
		var resp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if resp.Error.Message != "Incorrect email or password" {
			t.Fatalf("unexpected message %q", resp.Error.Message)
		}
	}
}

func TestMeReturnsUsageCount(t *testing.T) {
	r, _ := newTestRouter(t, 7)

	w := signupJSON(t, r, "user@example.com", "hunter22")
	token := accessToken(t, w)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	mw := httptest.NewRecorder()
	r.ServeHTTP(mw, req)

	if mw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", mw.Code, mw.Body.String())
	}
	var resp struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		UsageCount int    `json:"usage_count"`
	}
	if err := json.Unmarshal(mw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if resp.Email != "user@example.com" || resp.UsageCount != 7 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.ID == "" {
		t.Fatal("expected non-empty id")
	}
}

func TestMeRequiresAuth(t *testing.T) {
	r, _ := newTestRouter(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", w.Code)
	}
}
