package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/pmtool/internal/middleware"
	"github.com/hitoshi/pmtool/internal/model"
	"github.com/hitoshi/pmtool/internal/pagination"
	"github.com/hitoshi/pmtool/internal/validation"
)

// ProjectServiceInterface はプロジェクトハンドラーが必要とするサービスインターフェース。
type ProjectServiceInterface interface {
	// List は所有者のプロジェクト一覧を作成日時降順で返す。
	List(ctx context.Context, ownerID string, params pagination.Params) ([]*model.Project, pagination.Meta, error)
	// Create は新規プロジェクトを作成する。
	Create(ctx context.Context, ownerID string, input validation.ProjectInput) (*model.Project, error)
	// Get は所有プロジェクトを1件取得する。
	Get(ctx context.Context, id, ownerID string) (*model.Project, error)
	// Update は所有プロジェクトを更新する。
	Update(ctx context.Context, id, ownerID string, input validation.ProjectInput) (*model.Project, error)
	// Delete は所有プロジェクトを削除する。
	Delete(ctx context.Context, id, ownerID string) error
}

// ProjectHandler はプロジェクト管理のHTTPハンドラー。
type ProjectHandler struct {
	service      ProjectServiceInterface
	pageLimitMax int
}

// NewProjectHandler はProjectHandlerを生成する。
func NewProjectHandler(service ProjectServiceInterface, pageLimitMax int) *ProjectHandler {
	return &ProjectHandler{
		service:      service,
		pageLimitMax: pageLimitMax,
	}
}

// projectResponse はプロジェクト情報のAPIレスポンス。
type projectResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// projectListResponse はプロジェクト一覧のAPIレスポンス。
type projectListResponse struct {
	Items []projectResponse `json:"items"`
	Meta  pagination.Meta   `json:"meta"`
}

// toProjectResponse はmodel.ProjectからAPIレスポンスに変換する。
func toProjectResponse(p *model.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ownerIDOrUnauthorized はコンテキストから所有者IDを取り出す。
// 取り出せない場合は401を書き込み、falseを返す。
func ownerIDOrUnauthorized(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return "", false
	}
	return userID, true
}

// ListProjects はプロジェクト一覧を取得する。
// GET /api/projects?page=1&limit=10
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDOrUnauthorized(w, r)
	if !ok {
		return
	}

	params := pagination.ParseQuery(r.URL.Query(), h.pageLimitMax)

	items, meta, err := h.service.List(r.Context(), ownerID, params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := projectListResponse{
		Items: make([]projectResponse, len(items)),
		Meta:  meta,
	}
	for i, p := range items {
		resp.Items[i] = toProjectResponse(p)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CreateProject はプロジェクトを作成する。
// POST /api/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req validation.ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBodyParseError(w)
		return
	}

	input, fieldErrs := validation.ParseProject(req)
	if len(fieldErrs) > 0 {
		middleware.WriteValidationErrorResponse(w, fieldErrs)
		return
	}

	p, err := h.service.Create(r.Context(), ownerID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toProjectResponse(p))
}

// GetProject はプロジェクト詳細を取得する。
// GET /api/projects/{projectID}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDOrUnauthorized(w, r)
	if !ok {
		return
	}

	projectID := chi.URLParam(r, "projectID")

	p, err := h.service.Get(r.Context(), projectID, ownerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toProjectResponse(p))
}

// UpdateProject はプロジェクトを更新する。
// PATCH /api/projects/{projectID}
// 作成時と同じスキーマで検証する（タイトルは更新時も必須）。
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDOrUnauthorized(w, r)
	if !ok {
		return
	}

	projectID := chi.URLParam(r, "projectID")

	var req validation.ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBodyParseError(w)
		return
	}

	input, fieldErrs := validation.ParseProject(req)
	if len(fieldErrs) > 0 {
		middleware.WriteValidationErrorResponse(w, fieldErrs)
		return
	}

	p, err := h.service.Update(r.Context(), projectID, ownerID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toProjectResponse(p))
}

// DeleteProject はプロジェクトを削除する。
// DELETE /api/projects/{projectID}
// 配下のタスクは削除されない。
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDOrUnauthorized(w, r)
	if !ok {
		return
	}

	projectID := chi.URLParam(r, "projectID")

	if err := h.service.Delete(r.Context(), projectID, ownerID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"ok": true})
}
