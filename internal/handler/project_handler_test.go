package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/pmtool/internal/middleware"
	"github.com/hitoshi/pmtool/internal/model"
	"github.com/hitoshi/pmtool/internal/pagination"
	"github.com/hitoshi/pmtool/internal/validation"
)

type mockProjectService struct {
	listFunc   func(ctx context.Context, ownerID string, params pagination.Params) ([]*model.Project, pagination.Meta, error)
	createFunc func(ctx context.Context, ownerID string, input validation.ProjectInput) (*model.Project, error)
	getFunc    func(ctx context.Context, id, ownerID string) (*model.Project, error)
	updateFunc func(ctx context.Context, id, ownerID string, input validation.ProjectInput) (*model.Project, error)
	deleteFunc func(ctx context.Context, id, ownerID string) error
}

func (m *mockProjectService) List(ctx context.Context, ownerID string, params pagination.Params) ([]*model.Project, pagination.Meta, error) {
	return m.listFunc(ctx, ownerID, params)
}

func (m *mockProjectService) Create(ctx context.Context, ownerID string, input validation.ProjectInput) (*model.Project, error) {
	return m.createFunc(ctx, ownerID, input)
}

func (m *mockProjectService) Get(ctx context.Context, id, ownerID string) (*model.Project, error) {
	return m.getFunc(ctx, id, ownerID)
}

func (m *mockProjectService) Update(ctx context.Context, id, ownerID string, input validation.ProjectInput) (*model.Project, error) {
	return m.updateFunc(ctx, id, ownerID, input)
}

func (m *mockProjectService) Delete(ctx context.Context, id, ownerID string) error {
	return m.deleteFunc(ctx, id, ownerID)
}

var _ ProjectServiceInterface = (*mockProjectService)(nil)

func testProject() *model.Project {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return &model.Project{
		ID:          "proj-1",
		OwnerID:     "user-1",
		Title:       "プロジェクト",
		Description: "説明",
		Status:      model.ProjectStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// authedRequest は認証済みユーザーのリクエストをプロジェクトIDパラメータ付きで生成する。
func authedRequest(t *testing.T, method, path, userID string, body any, params map[string]string) *http.Request {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), userID))

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func TestProjectHandler_List(t *testing.T) {
	svc := &mockProjectService{
		listFunc: func(ctx context.Context, ownerID string, params pagination.Params) ([]*model.Project, pagination.Meta, error) {
			if ownerID != "user-1" {
				t.Errorf("ownerID = %q", ownerID)
			}
			if params.Page != 2 || params.Limit != 5 {
				t.Errorf("params = %+v, want page=2 limit=5", params)
			}
			return []*model.Project{testProject()}, pagination.NewMeta(params, 11), nil
		},
	}
	h := NewProjectHandler(svc, 100)

	req := authedRequest(t, http.MethodGet, "/api/projects?page=2&limit=5", "user-1", nil, nil)
	rec := httptest.NewRecorder()
	h.ListProjects(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body projectListResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(body.Items))
	}
	if body.Meta.Total != 11 || body.Meta.TotalPages != 3 {
		t.Errorf("meta = %+v", body.Meta)
	}
}

func TestProjectHandler_Create(t *testing.T) {
	svc := &mockProjectService{
		createFunc: func(ctx context.Context, ownerID string, input validation.ProjectInput) (*model.Project, error) {
			if input.Title != "新規" {
				t.Errorf("title = %q", input.Title)
			}
			return testProject(), nil
		},
	}
	h := NewProjectHandler(svc, 100)

	req := authedRequest(t, http.MethodPost, "/api/projects", "user-1", map[string]string{"title": "新規"}, nil)
	rec := httptest.NewRecorder()
	h.CreateProject(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body = %s", rec.Code, rec.Body.String())
	}
}

func TestProjectHandler_Create_ValidationError(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{}, 100)

	req := authedRequest(t, http.MethodPost, "/api/projects", "user-1", map[string]string{"description": "タイトルなし"}, nil)
	rec := httptest.NewRecorder()
	h.CreateProject(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestProjectHandler_Get_NotFound(t *testing.T) {
	svc := &mockProjectService{
		getFunc: func(ctx context.Context, id, ownerID string) (*model.Project, error) {
			return nil, model.NewProjectNotFoundError(id)
		},
	}
	h := NewProjectHandler(svc, 100)

	req := authedRequest(t, http.MethodGet, "/api/projects/missing", "user-1", nil, map[string]string{"projectID": "missing"})
	rec := httptest.NewRecorder()
	h.GetProject(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != model.ErrCodeProjectNotFound {
		t.Errorf("code = %q", body.Code)
	}
}

func TestProjectHandler_Update(t *testing.T) {
	svc := &mockProjectService{
		updateFunc: func(ctx context.Context, id, ownerID string, input validation.ProjectInput) (*model.Project, error) {
			if id != "proj-1" {
				t.Errorf("id = %q", id)
			}
			p := testProject()
			p.Title = input.Title
			return p, nil
		},
	}
	h := NewProjectHandler(svc, 100)

	req := authedRequest(t, http.MethodPatch, "/api/projects/proj-1", "user-1",
		map[string]string{"title": "更新"}, map[string]string{"projectID": "proj-1"})
	rec := httptest.NewRecorder()
	h.UpdateProject(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body projectResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Title != "更新" {
		t.Errorf("title = %q", body.Title)
	}
}

// 更新でもタイトルが必須であることを検証
func TestProjectHandler_Update_TitleRequired(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{}, 100)

	req := authedRequest(t, http.MethodPatch, "/api/projects/proj-1", "user-1",
		map[string]string{"status": "completed"}, map[string]string{"projectID": "proj-1"})
	rec := httptest.NewRecorder()
	h.UpdateProject(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestProjectHandler_Delete(t *testing.T) {
	svc := &mockProjectService{
		deleteFunc: func(ctx context.Context, id, ownerID string) error {
			return nil
		},
	}
	h := NewProjectHandler(svc, 100)

	req := authedRequest(t, http.MethodDelete, "/api/projects/proj-1", "user-1", nil, map[string]string{"projectID": "proj-1"})
	rec := httptest.NewRecorder()
	h.DeleteProject(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestProjectHandler_Unauthenticated(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{}, 100)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec := httptest.NewRecorder()
	h.ListProjects(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
