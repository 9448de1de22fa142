// Package seed は開発・デモ用の初期データ投入を提供する。
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/pmtool/internal/model"
	"github.com/hitoshi/pmtool/internal/repository"
)

// デモアカウントの資格情報。開発環境専用。
const (
	demoEmail    = "test@example.com"
	demoPassword = "Test@123"
	demoName     = "テストユーザー"
)

// Seeder はデモデータの投入を行う。
type Seeder struct {
	users      repository.UserRepository
	projects   repository.ProjectRepository
	tasks      repository.TaskRepository
	bcryptCost int
}

// NewSeeder はSeederを生成する。
func NewSeeder(users repository.UserRepository, projects repository.ProjectRepository, tasks repository.TaskRepository, bcryptCost int) *Seeder {
	return &Seeder{
		users:      users,
		projects:   projects,
		tasks:      tasks,
		bcryptCost: bcryptCost,
	}
}

// Run はデモユーザーとサンプルのプロジェクト・タスクを投入する。
// デモユーザーが既に存在する場合は何もしない（冪等）。
func (s *Seeder) Run(ctx context.Context) error {
	existing, err := s.users.FindByEmail(ctx, demoEmail)
	if err != nil {
		return fmt.Errorf("failed to check demo user: %w", err)
	}
	if existing != nil {
		slog.Info("demo user already exists, skipping seed",
			slog.String("email", demoEmail),
		)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        demoEmail,
		PasswordHash: string(hash),
		Name:         demoName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create demo user: %w", err)
	}

	projectTitles := []struct {
		title       string
		description string
		status      model.ProjectStatus
	}{
		{"ウェブサイトリニューアル", "コーポレートサイトの全面刷新", model.ProjectStatusActive},
		{"社内ツール整備", "業務効率化ツールの導入と運用", model.ProjectStatusActive},
	}

	taskTemplates := []struct {
		title  string
		status model.TaskStatus
	}{
		{"要件を整理する", model.TaskStatusTodo},
		{"実装を進める", model.TaskStatusInProgress},
		{"キックオフを完了する", model.TaskStatusDone},
	}

	for i, pt := range projectTitles {
		// 一覧の並び順が安定するよう作成時刻をずらす
		createdAt := now.Add(time.Duration(i) * time.Second)
		p := &model.Project{
			ID:          uuid.NewString(),
			OwnerID:     user.ID,
			Title:       pt.title,
			Description: pt.description,
			Status:      pt.status,
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
		}
		if err := s.projects.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to create demo project: %w", err)
		}

		for j, tt := range taskTemplates {
			taskCreatedAt := createdAt.Add(time.Duration(j+1) * time.Millisecond)
			task := &model.Task{
				ID:        uuid.NewString(),
				ProjectID: p.ID,
				Title:     tt.title,
				Status:    tt.status,
				CreatedAt: taskCreatedAt,
				UpdatedAt: taskCreatedAt,
			}
			if err := s.tasks.Create(ctx, task); err != nil {
				return fmt.Errorf("failed to create demo task: %w", err)
			}
		}
	}

	slog.Info("seed completed",
		slog.String("email", demoEmail),
		slog.Int("projects", len(projectTitles)),
		slog.Int("tasks_per_project", len(taskTemplates)),
	)
	return nil
}
