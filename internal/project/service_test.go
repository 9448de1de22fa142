package project

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/hitoshi/pmtool/internal/model"
	"github.com/hitoshi/pmtool/internal/pagination"
	"github.com/hitoshi/pmtool/internal/repository"
	"github.com/hitoshi/pmtool/internal/validation"
)

type mockProjectRepo struct {
	findByIDAndOwnerFunc   func(ctx context.Context, id, ownerID string) (*model.Project, error)
	listByOwnerFunc        func(ctx context.Context, ownerID string, offset, limit int) ([]*model.Project, error)
	countByOwnerFunc       func(ctx context.Context, ownerID string) (int, error)
	createFunc             func(ctx context.Context, project *model.Project) error
	updateByIDAndOwnerFunc func(ctx context.Context, project *model.Project) (*model.Project, error)
	deleteByIDAndOwnerFunc func(ctx context.Context, id, ownerID string) (bool, error)
}

func (m *mockProjectRepo) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Project, error) {
	return m.findByIDAndOwnerFunc(ctx, id, ownerID)
}

func (m *mockProjectRepo) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*model.Project, error) {
	return m.listByOwnerFunc(ctx, ownerID, offset, limit)
}

func (m *mockProjectRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	return m.countByOwnerFunc(ctx, ownerID)
}

func (m *mockProjectRepo) Create(ctx context.Context, project *model.Project) error {
	return m.createFunc(ctx, project)
}

func (m *mockProjectRepo) UpdateByIDAndOwner(ctx context.Context, project *model.Project) (*model.Project, error) {
	return m.updateByIDAndOwnerFunc(ctx, project)
}

func (m *mockProjectRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (bool, error) {
	return m.deleteByIDAndOwnerFunc(ctx, id, ownerID)
}

var _ repository.ProjectRepository = (*mockProjectRepo)(nil)

// メモリ上のプロジェクト表。作成日時降順・ID降順の並びを再現する。
func newMemoryProjectRepo() (*mockProjectRepo, map[string]*model.Project) {
	store := make(map[string]*model.Project)

	sorted := func(ownerID string) []*model.Project {
		var items []*model.Project
		for _, p := range store {
			if p.OwnerID == ownerID {
				items = append(items, p)
			}
		}
		sort.Slice(items, func(i, j int) bool {
			if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
				return items[i].CreatedAt.After(items[j].CreatedAt)
			}
			return items[i].ID > items[j].ID
		})
		return items
	}

	repo := &mockProjectRepo{
		findByIDAndOwnerFunc: func(ctx context.Context, id, ownerID string) (*model.Project, error) {
			p, ok := store[id]
			if !ok || p.OwnerID != ownerID {
				return nil, nil
			}
			return p, nil
		},
		listByOwnerFunc: func(ctx context.Context, ownerID string, offset, limit int) ([]*model.Project, error) {
			items := sorted(ownerID)
			if offset >= len(items) {
				return nil, nil
			}
			end := offset + limit
			if end > len(items) {
				end = len(items)
			}
			return items[offset:end], nil
		},
		countByOwnerFunc: func(ctx context.Context, ownerID string) (int, error) {
			return len(sorted(ownerID)), nil
		},
		createFunc: func(ctx context.Context, project *model.Project) error {
			store[project.ID] = project
			return nil
		},
		updateByIDAndOwnerFunc: func(ctx context.Context, project *model.Project) (*model.Project, error) {
			p, ok := store[project.ID]
			if !ok || p.OwnerID != project.OwnerID {
				return nil, nil
			}
			store[project.ID] = project
			return project, nil
		},
		deleteByIDAndOwnerFunc: func(ctx context.Context, id, ownerID string) (bool, error) {
			p, ok := store[id]
			if !ok || p.OwnerID != ownerID {
				return false, nil
			}
			delete(store, id)
			return true, nil
		},
	}
	return repo, store
}

func isProjectNotFound(t *testing.T, err error) bool {
	t.Helper()
	var apiErr *model.APIError
	return errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeProjectNotFound
}

func TestService_Create_DefaultStatus(t *testing.T) {
	repo, _ := newMemoryProjectRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), "owner-1", validation.ProjectInput{Title: "新規"})
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	if p.Status != model.ProjectStatusActive {
		t.Errorf("Status = %q, want active", p.Status)
	}
	if p.ID == "" {
		t.Error("project should have an ID")
	}
	if p.OwnerID != "owner-1" {
		t.Errorf("OwnerID = %q", p.OwnerID)
	}
}

func TestService_GetUpdateDelete_RoundTrip(t *testing.T) {
	repo, _ := newMemoryProjectRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, "owner-1", validation.ProjectInput{Title: "元のタイトル"})
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	got, err := svc.Get(ctx, p.ID, "owner-1")
	if err != nil {
		t.Fatalf("failed to get project: %v", err)
	}
	if got.Title != "元のタイトル" {
		t.Errorf("Title = %q", got.Title)
	}

	updated, err := svc.Update(ctx, p.ID, "owner-1", validation.ProjectInput{
		Title:  "更新後のタイトル",
		Status: model.ProjectStatusCompleted,
	})
	if err != nil {
		t.Fatalf("failed to update project: %v", err)
	}
	if updated.Title != "更新後のタイトル" {
		t.Errorf("Title = %q", updated.Title)
	}
	if updated.Status != model.ProjectStatusCompleted {
		t.Errorf("Status = %q", updated.Status)
	}
	if updated.OwnerID != "owner-1" {
		t.Errorf("OwnerID must not change on update, got %q", updated.OwnerID)
	}

	if err := svc.Delete(ctx, p.ID, "owner-1"); err != nil {
		t.Fatalf("failed to delete project: %v", err)
	}
	if _, err := svc.Get(ctx, p.ID, "owner-1"); !isProjectNotFound(t, err) {
		t.Errorf("deleted project should be NOT_FOUND, got %v", err)
	}
}

// 他ユーザー所有のプロジェクトはGet・Update・DeleteすべてNOT_FOUNDになり、
// 403では存在を漏らさないことを検証
func TestService_CrossOwner_AlwaysNotFound(t *testing.T) {
	repo, _ := newMemoryProjectRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, "owner-1", validation.ProjectInput{Title: "owner-1のプロジェクト"})
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	if _, err := svc.Get(ctx, p.ID, "owner-2"); !isProjectNotFound(t, err) {
		t.Errorf("cross-owner Get should be NOT_FOUND, got %v", err)
	}
	if _, err := svc.Update(ctx, p.ID, "owner-2", validation.ProjectInput{Title: "x"}); !isProjectNotFound(t, err) {
		t.Errorf("cross-owner Update should be NOT_FOUND, got %v", err)
	}
	if err := svc.Delete(ctx, p.ID, "owner-2"); !isProjectNotFound(t, err) {
		t.Errorf("cross-owner Delete should be NOT_FOUND, got %v", err)
	}

	// 所有者からは引き続き見える
	if _, err := svc.Get(ctx, p.ID, "owner-1"); err != nil {
		t.Errorf("owner should still see the project: %v", err)
	}
}

// ステータス未指定の更新では既存ステータスが維持されることを検証
func TestService_Update_KeepsStatusWhenOmitted(t *testing.T) {
	repo, _ := newMemoryProjectRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, "owner-1", validation.ProjectInput{
		Title:  "p",
		Status: model.ProjectStatusCompleted,
	})
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	updated, err := svc.Update(ctx, p.ID, "owner-1", validation.ProjectInput{Title: "p2"})
	if err != nil {
		t.Fatalf("failed to update project: %v", err)
	}
	if updated.Status != model.ProjectStatusCompleted {
		t.Errorf("omitted status should keep existing value, got %q", updated.Status)
	}
}

func TestService_List_NewestFirstAndMeta(t *testing.T) {
	repo, store := newMemoryProjectRepo()
	svc := NewService(repo)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		id := string(rune('a' + i%26))
		store[id+"-proj"] = &model.Project{
			ID:        id + "-proj",
			OwnerID:   "owner-1",
			Title:     "p",
			Status:    model.ProjectStatusActive,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}

	items, meta, err := svc.List(ctx, "owner-1", pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("failed to list projects: %v", err)
	}
	if len(items) != 10 {
		t.Errorf("len(items) = %d, want 10", len(items))
	}
	if meta.Total != 25 || meta.TotalPages != 3 {
		t.Errorf("meta = %+v, want total=25 total_pages=3", meta)
	}
	for i := 1; i < len(items); i++ {
		if items[i].CreatedAt.After(items[i-1].CreatedAt) {
			t.Errorf("items must be ordered newest first")
		}
	}

	// 3ページ目は残り5件
	items, _, err = svc.List(ctx, "owner-1", pagination.Params{Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("failed to list page 3: %v", err)
	}
	if len(items) != 5 {
		t.Errorf("len(page 3) = %d, want 5", len(items))
	}

	// 範囲外ページは空
	items, meta, err = svc.List(ctx, "owner-1", pagination.Params{Page: 10, Limit: 10})
	if err != nil {
		t.Fatalf("failed to list out-of-range page: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("out-of-range page should be empty, got %d items", len(items))
	}
	if meta.Total != 25 {
		t.Errorf("meta.Total = %d, want 25", meta.Total)
	}
}
