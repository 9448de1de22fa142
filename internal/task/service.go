// Package task はタスクのCRUDと親プロジェクト経由の所有権判定を提供する。
//
// 所有権エラーの返し方はプロジェクト配下の操作と単独タスク操作で異なる。
// プロジェクト配下の一覧・作成は親プロジェクトの取得自体が所有者で絞り込まれるため、
// 他ユーザーのプロジェクトはPROJECT_NOT_FOUNDになる。
// 一方、タスク単体の更新・削除はまずタスクを所有者で絞り込まずに取得するため、
// タスクの存在（TASK_NOT_FOUND）と権限なし（TASK_FORBIDDEN）が区別されて返る。
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/pmtool/internal/model"
	"github.com/hitoshi/pmtool/internal/pagination"
	"github.com/hitoshi/pmtool/internal/repository"
	"github.com/hitoshi/pmtool/internal/validation"
)

// Service はタスクサービス。
type Service struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
}

// NewService はServiceを生成する。
func NewService(tasks repository.TaskRepository, projects repository.ProjectRepository) *Service {
	return &Service{tasks: tasks, projects: projects}
}

// requireOwnedProject は親プロジェクトが所有者のものであることを確認する。
// 未存在・他ユーザー所有はどちらもPROJECT_NOT_FOUNDになる。
func (s *Service) requireOwnedProject(ctx context.Context, projectID, ownerID string) error {
	p, err := s.projects.FindByIDAndOwner(ctx, projectID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to find project: %w", err)
	}
	if p == nil {
		return model.NewProjectNotFoundError(projectID)
	}
	return nil
}

// ListByProject は所有プロジェクト配下のタスク一覧を作成日時降順で返す。
// statusが空でない場合はその状態のタスクのみ返す。
func (s *Service) ListByProject(ctx context.Context, projectID, ownerID, status string, params pagination.Params) ([]*model.Task, pagination.Meta, error) {
	if err := s.requireOwnedProject(ctx, projectID, ownerID); err != nil {
		return nil, pagination.Meta{}, err
	}

	total, err := s.tasks.CountByProject(ctx, projectID, status)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to count tasks: %w", err)
	}

	items, err := s.tasks.ListByProject(ctx, projectID, status, params.Offset(), params.Limit)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	return items, pagination.NewMeta(params, total), nil
}

// Create は所有プロジェクト配下に新規タスクを作成する。
// ステータス未指定時はtodoになる。
func (s *Service) Create(ctx context.Context, projectID, ownerID string, input validation.TaskInput) (*model.Task, error) {
	if err := s.requireOwnedProject(ctx, projectID, ownerID); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = model.TaskStatusTodo
	}

	now := time.Now()
	t := &model.Task{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return t, nil
}

// authorizeTask はタスクを取得し、親プロジェクトの所有者であることを確認する。
// タスクが存在しない場合はTASK_NOT_FOUND、存在するが親プロジェクトの
// 所有者でない場合はTASK_FORBIDDENを返す。
func (s *Service) authorizeTask(ctx context.Context, taskID, ownerID string) (*model.Task, error) {
	t, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if t == nil {
		return nil, model.NewTaskNotFoundError(taskID)
	}

	p, err := s.projects.FindByIDAndOwner(ctx, t.ProjectID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find parent project: %w", err)
	}
	if p == nil {
		return nil, model.NewTaskForbiddenError()
	}

	return t, nil
}

// Get はタスクを1件取得する。
func (s *Service) Get(ctx context.Context, taskID, ownerID string) (*model.Task, error) {
	return s.authorizeTask(ctx, taskID, ownerID)
}

// Update はタスクを更新する。
// 既存値を取得してから入力をマージする。ステータス未指定時は既存値を維持し、
// due_dateは入力値で常に置き換える（nilなら期限なしになる）。
func (s *Service) Update(ctx context.Context, taskID, ownerID string, input validation.TaskInput) (*model.Task, error) {
	existing, err := s.authorizeTask(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}

	existing.Title = input.Title
	existing.Description = input.Description
	if input.Status != "" {
		existing.Status = input.Status
	}
	existing.DueDate = input.DueDate
	existing.UpdatedAt = time.Now()

	updated, err := s.tasks.UpdateByID(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if updated == nil {
		return nil, model.NewTaskNotFoundError(taskID)
	}

	return updated, nil
}

// Delete はタスクを削除する。
func (s *Service) Delete(ctx context.Context, taskID, ownerID string) error {
	if _, err := s.authorizeTask(ctx, taskID, ownerID); err != nil {
		return err
	}

	deleted, err := s.tasks.DeleteByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !deleted {
		return model.NewTaskNotFoundError(taskID)
	}
	return nil
}
