package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/pmtool/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	task := &model.Task{}
	var dueDate sql.NullTime

	err := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, title, description, status, due_date, created_at, updated_at
		 FROM tasks WHERE id = $1`,
		id,
	).Scan(&task.ID, &task.ProjectID, &task.Title, &task.Description,
		&task.Status, &dueDate, &task.CreatedAt, &task.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}

	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}

	return task, nil
}

// ListByProject はプロジェクト配下のタスク一覧を作成日時降順で返す。
// created_atが同時刻の場合はid降順で順序を安定させる。
// statusが空でない場合はその状態のタスクのみ返す。
func (r *PostgresTaskRepo) ListByProject(ctx context.Context, projectID, status string, offset, limit int) ([]*model.Task, error) {
	query := `SELECT id, project_id, title, description, status, due_date, created_at, updated_at
	          FROM tasks WHERE project_id = $1`
	args := []interface{}{projectID}

	if status != "" {
		query += ` AND status = $2 ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`
		args = append(args, status, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	tasks := []*model.Task{}
	for rows.Next() {
		task := &model.Task{}
		var dueDate sql.NullTime
		if err := rows.Scan(&task.ID, &task.ProjectID, &task.Title, &task.Description,
			&task.Status, &dueDate, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, fmt.Errorf("タスク行の読み取りに失敗しました: %w", err)
		}
		if dueDate.Valid {
			task.DueDate = &dueDate.Time
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("タスク一覧の走査に失敗しました: %w", err)
	}

	return tasks, nil
}

// CountByProject はプロジェクト配下のタスク総数を返す。
// statusが空でない場合はその状態のタスクのみ数える。
func (r *PostgresTaskRepo) CountByProject(ctx context.Context, projectID, status string) (int, error) {
	var count int
	var err error

	if status != "" {
		err = r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM tasks WHERE project_id = $1 AND status = $2`,
			projectID, status,
		).Scan(&count)
	} else {
		err = r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM tasks WHERE project_id = $1`,
			projectID,
		).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("タスク数の取得に失敗しました: %w", err)
	}

	return count, nil
}

// Create はタスクを作成する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	var dueDate sql.NullTime
	if task.DueDate != nil {
		dueDate = sql.NullTime{Time: *task.DueDate, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, title, description, status, due_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		task.ID, task.ProjectID, task.Title, task.Description,
		task.Status, dueDate, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}

	return nil
}

// UpdateByID は指定IDのタスクを更新し、更新後の値を返す。
// 対象行がない場合はnilを返す。project_idは更新対象に含めない。
func (r *PostgresTaskRepo) UpdateByID(ctx context.Context, task *model.Task) (*model.Task, error) {
	var dueDate sql.NullTime
	if task.DueDate != nil {
		dueDate = sql.NullTime{Time: *task.DueDate, Valid: true}
	}

	updated := &model.Task{}
	var updatedDue sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, status = $3, due_date = $4, updated_at = $5
		 WHERE id = $6
		 RETURNING id, project_id, title, description, status, due_date, created_at, updated_at`,
		task.Title, task.Description, task.Status, dueDate, task.UpdatedAt, task.ID,
	).Scan(&updated.ID, &updated.ProjectID, &updated.Title, &updated.Description,
		&updated.Status, &updatedDue, &updated.CreatedAt, &updated.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}

	if updatedDue.Valid {
		updated.DueDate = &updatedDue.Time
	}

	return updated, nil
}

// DeleteByID は指定IDのタスクを削除する。削除した場合はtrueを返す。
func (r *PostgresTaskRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
