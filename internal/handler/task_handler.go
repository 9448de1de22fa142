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

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	// ListByProject は所有プロジェクト配下のタスク一覧を作成日時降順で返す。
	ListByProject(ctx context.Context, projectID, ownerID, status string, params pagination.Params) ([]*model.Task, pagination.Meta, error)
	// Create は所有プロジェクト配下に新規タスクを作成する。
	Create(ctx context.Context, projectID, ownerID string, input validation.TaskInput) (*model.Task, error)
	// Get はタスクを1件取得する。
	Get(ctx context.Context, taskID, ownerID string) (*model.Task, error)
	// Update はタスクを更新する。
	Update(ctx context.Context, taskID, ownerID string, input validation.TaskInput) (*model.Task, error)
	// Delete はタスクを削除する。
	Delete(ctx context.Context, taskID, ownerID string) error
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service      TaskServiceInterface
	pageLimitMax int
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface, pageLimitMax int) *TaskHandler {
	return &TaskHandler{
		service:      service,
		pageLimitMax: pageLimitMax,
	}
}

// taskResponse はタスク情報のAPIレスポンス。
type taskResponse struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// taskListResponse はタスク一覧のAPIレスポンス。
type taskListResponse struct {
	Items []taskResponse  `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}

// toTaskResponse はmodel.TaskからAPIレスポンスに変換する。
func toTaskResponse(t *model.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ListTasks はプロジェクト配下のタスク一覧を取得する。
// GET /api/projects/{projectID}/tasks?status=todo&page=1&limit=10
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDOrUnauthorized(w, r)
	if !ok {
		return
	}

	projectID := chi.URLParam(r, "projectID")
	params := pagination.ParseQuery(r.URL.Query(), h.pageLimitMax)

	status := r.URL.Query().Get("status")
	if status != "" && !model.TaskStatus(status).IsValid() {
		middleware.WriteValidationErrorResponse(w, validation.FieldErrors{
			{Field: "status", Message: "statusにはtodo、in-progress、doneのいずれかを指定してください。"},
		})
		return
	}

	items, meta, err := h.service.ListByProject(r.Context(), projectID, ownerID, status, params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := taskListResponse{
		Items: make([]taskResponse, len(items)),
		Meta:  meta,
	}
	for i, t := range items {
		resp.Items[i] = toTaskResponse(t)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CreateTask はプロジェクト配下にタスクを作成する。
// POST /api/projects/{projectID}/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDOrUnauthorized(w, r)
	if !ok {
		return
	}

	projectID := chi.URLParam(r, "projectID")

	var req validation.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBodyParseError(w)
		return
	}

	input, fieldErrs := validation.ParseTask(req)
	if len(fieldErrs) > 0 {
		middleware.WriteValidationErrorResponse(w, fieldErrs)
		return
	}

	t, err := h.service.Create(r.Context(), projectID, ownerID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toTaskResponse(t))
}

// GetTask はタスク詳細を取得する。
// GET /api/tasks/{taskID}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDOrUnauthorized(w, r)
	if !ok {
		return
	}

	taskID := chi.URLParam(r, "taskID")

	t, err := h.service.Get(r.Context(), taskID, ownerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTaskResponse(t))
}

// UpdateTask はタスクを更新する。
// PATCH /api/tasks/{taskID}
// 作成時と同じスキーマで検証する（タイトルは更新時も必須）。
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDOrUnauthorized(w, r)
	if !ok {
		return
	}

	taskID := chi.URLParam(r, "taskID")

	var req validation.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBodyParseError(w)
		return
	}

	input, fieldErrs := validation.ParseTask(req)
	if len(fieldErrs) > 0 {
		middleware.WriteValidationErrorResponse(w, fieldErrs)
		return
	}

	t, err := h.service.Update(r.Context(), taskID, ownerID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTaskResponse(t))
}

// DeleteTask はタスクを削除する。
// DELETE /api/tasks/{taskID}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDOrUnauthorized(w, r)
	if !ok {
		return
	}

	taskID := chi.URLParam(r, "taskID")

	if err := h.service.Delete(r.Context(), taskID, ownerID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"ok": true})
}
