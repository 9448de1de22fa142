package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/pmtool/internal/model"
)

// PostgresProjectRepo はPostgreSQLを使用したプロジェクトリポジトリ。
type PostgresProjectRepo struct {
	db *sql.DB
}

// NewPostgresProjectRepo はPostgresProjectRepoを生成する。
func NewPostgresProjectRepo(db *sql.DB) *PostgresProjectRepo {
	return &PostgresProjectRepo{db: db}
}

// FindByIDAndOwner は指定IDかつ指定所有者のプロジェクトを取得する。
// 見つからない場合（未存在・所有者不一致とも）はnilを返す。
func (r *PostgresProjectRepo) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Project, error) {
	project := &model.Project{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, description, status, created_at, updated_at
		 FROM projects WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&project.ID, &project.OwnerID, &project.Title, &project.Description,
		&project.Status, &project.CreatedAt, &project.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}

	return project, nil
}

// ListByOwner は所有者のプロジェクト一覧を作成日時降順で返す。
// created_atが同時刻の場合はid降順で順序を安定させる。
func (r *PostgresProjectRepo) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*model.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, title, description, status, created_at, updated_at
		 FROM projects WHERE owner_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("プロジェクト一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	projects := []*model.Project{}
	for rows.Next() {
		project := &model.Project{}
		if err := rows.Scan(&project.ID, &project.OwnerID, &project.Title, &project.Description,
			&project.Status, &project.CreatedAt, &project.UpdatedAt); err != nil {
			return nil, fmt.Errorf("プロジェクト行の読み取りに失敗しました: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("プロジェクト一覧の走査に失敗しました: %w", err)
	}

	return projects, nil
}

// CountByOwner は所有者のプロジェクト総数を返す。
func (r *PostgresProjectRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE owner_id = $1`,
		ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("プロジェクト数の取得に失敗しました: %w", err)
	}

	return count, nil
}

// Create はプロジェクトを作成する。
func (r *PostgresProjectRepo) Create(ctx context.Context, project *model.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, owner_id, title, description, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		project.ID, project.OwnerID, project.Title, project.Description,
		project.Status, project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("プロジェクトの作成に失敗しました: %w", err)
	}

	return nil
}

// UpdateByIDAndOwner は指定IDかつ指定所有者のプロジェクトを更新し、更新後の値を返す。
// 対象行がない場合はnilを返す。owner_idは更新対象に含めない。
func (r *PostgresProjectRepo) UpdateByIDAndOwner(ctx context.Context, project *model.Project) (*model.Project, error) {
	updated := &model.Project{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE projects
		 SET title = $1, description = $2, status = $3, updated_at = $4
		 WHERE id = $5 AND owner_id = $6
		 RETURNING id, owner_id, title, description, status, created_at, updated_at`,
		project.Title, project.Description, project.Status, project.UpdatedAt,
		project.ID, project.OwnerID,
	).Scan(&updated.ID, &updated.OwnerID, &updated.Title, &updated.Description,
		&updated.Status, &updated.CreatedAt, &updated.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの更新に失敗しました: %w", err)
	}

	return updated, nil
}

// DeleteByIDAndOwner は指定IDかつ指定所有者のプロジェクトを削除する。
// 配下のタスクは削除しない。
func (r *PostgresProjectRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM projects WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("プロジェクトの削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// compile-time interface check
var _ ProjectRepository = (*PostgresProjectRepo)(nil)
