// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/pmtool/internal/model"
)

// ErrDuplicateEmail はメールアドレスの一意制約違反を表す。
// 事前チェックをすり抜けた同時登録はこのエラーとして検出される。
var ErrDuplicateEmail = errors.New("duplicate email")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスが重複している場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error
}

// ProjectRepository はプロジェクトデータの永続化インターフェース。
// 読み取り・更新・削除はすべて(id AND owner_id)で絞り込む。
// 他ユーザー所有のプロジェクトは存在しないものとして扱われる。
type ProjectRepository interface {
	// FindByIDAndOwner は指定IDかつ指定所有者のプロジェクトを取得する。
	// 見つからない場合（未存在・所有者不一致とも）はnilを返す。
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Project, error)

	// ListByOwner は所有者のプロジェクト一覧を作成日時降順で返す。
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*model.Project, error)

	// CountByOwner は所有者のプロジェクト総数を返す。
	CountByOwner(ctx context.Context, ownerID string) (int, error)

	// Create はプロジェクトを作成する。
	Create(ctx context.Context, project *model.Project) error

	// UpdateByIDAndOwner は指定IDかつ指定所有者のプロジェクトを更新し、更新後の値を返す。
	// 対象行がない場合はnilを返す。
	UpdateByIDAndOwner(ctx context.Context, project *model.Project) (*model.Project, error)

	// DeleteByIDAndOwner は指定IDかつ指定所有者のプロジェクトを削除する。
	// 削除した場合はtrueを返す。
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (bool, error)
}

// TaskRepository はタスクデータの永続化インターフェース。
// タスクの取得は所有者で絞り込まない。所有判定は呼び出し側が
// 親プロジェクトの所有者を別途確認して行う。
type TaskRepository interface {
	// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Task, error)

	// ListByProject はプロジェクト配下のタスク一覧を作成日時降順で返す。
	// statusが空でない場合はその状態のタスクのみ返す。
	ListByProject(ctx context.Context, projectID, status string, offset, limit int) ([]*model.Task, error)

	// CountByProject はプロジェクト配下のタスク総数を返す。
	// statusが空でない場合はその状態のタスクのみ数える。
	CountByProject(ctx context.Context, projectID, status string) (int, error)

	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// UpdateByID は指定IDのタスクを更新し、更新後の値を返す。
	// 対象行がない場合はnilを返す。
	UpdateByID(ctx context.Context, task *model.Task) (*model.Task, error)

	// DeleteByID は指定IDのタスクを削除する。削除した場合はtrueを返す。
	DeleteByID(ctx context.Context, id string) (bool, error)
}
