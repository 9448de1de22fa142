// Package project はプロジェクトのCRUDと所有権判定を提供する。
// すべての読み書きは所有者IDで絞り込み、他ユーザーのプロジェクトは
// 未存在と区別せずPROJECT_NOT_FOUNDとして扱う。
package project

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

// Service はプロジェクトサービス。
type Service struct {
	projects repository.ProjectRepository
}

// NewService はServiceを生成する。
func NewService(projects repository.ProjectRepository) *Service {
	return &Service{projects: projects}
}

// List は所有者のプロジェクト一覧を作成日時降順で返す。
func (s *Service) List(ctx context.Context, ownerID string, params pagination.Params) ([]*model.Project, pagination.Meta, error) {
	total, err := s.projects.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to count projects: %w", err)
	}

	items, err := s.projects.ListByOwner(ctx, ownerID, params.Offset(), params.Limit)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to list projects: %w", err)
	}

	return items, pagination.NewMeta(params, total), nil
}

// Create は新規プロジェクトを作成する。ステータス未指定時はactiveになる。
func (s *Service) Create(ctx context.Context, ownerID string, input validation.ProjectInput) (*model.Project, error) {
	status := input.Status
	if status == "" {
		status = model.ProjectStatusActive
	}

	now := time.Now()
	p := &model.Project{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return p, nil
}

// Get は所有プロジェクトを1件取得する。
// 未存在と他ユーザー所有はどちらもPROJECT_NOT_FOUNDになる。
func (s *Service) Get(ctx context.Context, id, ownerID string) (*model.Project, error) {
	p, err := s.projects.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if p == nil {
		return nil, model.NewProjectNotFoundError(id)
	}
	return p, nil
}

// Update は所有プロジェクトを更新する。
// 既存値を取得してから入力をマージする。ステータス未指定時は既存値を維持する。
func (s *Service) Update(ctx context.Context, id, ownerID string, input validation.ProjectInput) (*model.Project, error) {
	existing, err := s.projects.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if existing == nil {
		return nil, model.NewProjectNotFoundError(id)
	}

	existing.Title = input.Title
	existing.Description = input.Description
	if input.Status != "" {
		existing.Status = input.Status
	}
	existing.UpdatedAt = time.Now()

	updated, err := s.projects.UpdateByIDAndOwner(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	if updated == nil {
		// 取得と更新の間に削除された場合
		return nil, model.NewProjectNotFoundError(id)
	}

	return updated, nil
}

// Delete は所有プロジェクトを削除する。
// 配下のタスクは削除せずそのまま残る。
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	deleted, err := s.projects.DeleteByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if !deleted {
		return model.NewProjectNotFoundError(id)
	}
	return nil
}
