package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/pmtool/internal/auth"
	"github.com/hitoshi/pmtool/internal/middleware"
	"github.com/hitoshi/pmtool/internal/model"
	"github.com/hitoshi/pmtool/internal/pagination"
	"github.com/hitoshi/pmtool/internal/validation"
)

// newTestRouter は実トークンと最小限のモックサービスでルーターを組み立てる。
func newTestRouter(t *testing.T) (http.Handler, *auth.TokenManager) {
	t.Helper()

	tokens, err := auth.NewTokenManager("router-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("failed to create token manager: %v", err)
	}

	projectSvc := &mockProjectService{
		listFunc: func(ctx context.Context, ownerID string, params pagination.Params) ([]*model.Project, pagination.Meta, error) {
			return []*model.Project{testProject()}, pagination.NewMeta(params, 1), nil
		},
		createFunc: func(ctx context.Context, ownerID string, input validation.ProjectInput) (*model.Project, error) {
			return testProject(), nil
		},
	}
	taskSvc := &mockTaskService{
		getFunc: func(ctx context.Context, taskID, ownerID string) (*model.Task, error) {
			return testTask(), nil
		},
	}
	authSvc := &mockAuthService{
		currentUserFunc: func(ctx context.Context, userID string) (*model.User, error) {
			return testUser(), nil
		},
	}

	router := NewRouter(&RouterDeps{
		TokenParser:       tokens,
		CORSAllowedOrigin: "http://localhost:3000",
		AuthService:       authSvc,
		AuthConfig:        AuthHandlerConfig{SessionTTL: time.Hour},
		ProjectService:    projectSvc,
		TaskService:       taskSvc,
		PageLimitMax:      100,
	})
	return router, tokens
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q", body["status"])
	}
}

func TestRouter_APIRequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/projects"},
		{http.MethodGet, "/api/me"},
		{http.MethodGet, "/api/tasks/task-1"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestRouter_APIWithBearerToken(t *testing.T) {
	router, tokens := newTestRouter(t)

	token, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body = %s", rec.Code, rec.Body.String())
	}
	var body projectListResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.Items) != 1 {
		t.Errorf("items = %d, want 1", len(body.Items))
	}
}

// 別の鍵で署名されたトークンでAPIが401になることを検証
func TestRouter_ForeignTokenRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	// 別のTokenManagerで署名したトークンは署名不一致で拒否される
	other, err := auth.NewTokenManager("another-secret", time.Hour)
	if err != nil {
		t.Fatalf("failed to create token manager: %v", err)
	}
	token, err := other.Issue("user-1")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// Cookieセッションの状態変更リクエストにはCSRFトークンが必要なことを検証
func TestRouter_CookieSessionRequiresCSRF(t *testing.T) {
	router, tokens := newTestRouter(t)

	token, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	body := strings.NewReader(`{"title":"p"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/projects", body)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	// CSRFトークンを揃えると通る
	req = httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{"title":"p"}`))
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "tok"})
	req.Header.Set("X-CSRF-Token", "tok")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201, body = %s", rec.Code, rec.Body.String())
	}
}

// 画面ルートのゲートがルーター経由でも機能することを検証
func TestRouter_PageGate(t *testing.T) {
	router, tokens := newTestRouter(t)

	// 未認証で保護ページ → ログインへ
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/login?callbackUrl=%2Fdashboard" {
		t.Errorf("Location = %q", got)
	}

	// 認証済みでログインページ → ダッシュボードへ
	token, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/dashboard" {
		t.Errorf("Location = %q", got)
	}

	// 未認証でログインページはそのまま表示
	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_LogoutWithoutAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_CSRFTokenEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["token"] == "" {
		t.Error("response should contain a token")
	}
}
