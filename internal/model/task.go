package model

import "time"

// TaskStatus はタスクの状態を表す。
type TaskStatus string

const (
	// TaskStatusTodo は未着手のタスクを示す。
	TaskStatusTodo TaskStatus = "todo"
	// TaskStatusInProgress は進行中のタスクを示す。
	TaskStatusInProgress TaskStatus = "in-progress"
	// TaskStatusDone は完了したタスクを示す。
	TaskStatusDone TaskStatus = "done"
)

// IsValid はタスク状態が定義済みの値かどうかを返す。
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task はプロジェクト配下のタスクを表す。
// ProjectIDは作成時に設定され、以後変更されない。
// タスク自体は所有者を持たず、親プロジェクトのOwnerIDが実効的な所有者となる。
type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Status      TaskStatus
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
