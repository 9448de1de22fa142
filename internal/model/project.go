package model

import "time"

// ProjectStatus はプロジェクトの状態を表す。
type ProjectStatus string

const (
	// ProjectStatusActive は進行中のプロジェクトを示す。
	ProjectStatusActive ProjectStatus = "active"
	// ProjectStatusCompleted は完了したプロジェクトを示す。
	ProjectStatusCompleted ProjectStatus = "completed"
)

// IsValid はプロジェクト状態が定義済みの値かどうかを返す。
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusCompleted:
		return true
	}
	return false
}

// Project はユーザーが所有するプロジェクトを表す。
// OwnerIDは作成時に設定され、以後変更されない。
type Project struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Status      ProjectStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
