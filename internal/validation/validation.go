// Package validation はリクエスト入力の型付きパースを提供する。
// 各Parse関数は検証済みの型付き入力か、フィールドごとのエラー一覧のどちらかを返す。
// 例外的な制御フローは使用しない。
package validation

import (
	"net/mail"
	"regexp"
	"time"

	"github.com/hitoshi/pmtool/internal/model"
)

const (
	maxProjectTitleLen = 120
	maxTaskTitleLen    = 200
	minPasswordLen     = 8
)

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// FieldError は単一フィールドの検証エラー。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors はフィールドエラーの一覧。空でなければ検証失敗を意味する。
type FieldErrors []FieldError

func (fe FieldErrors) add(field, message string) FieldErrors {
	return append(fe, FieldError{Field: field, Message: message})
}

// --- ユーザー登録 ---

// RegisterRequest はユーザー登録リクエストのボディ。
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// RegisterInput は検証済みのユーザー登録入力。
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// ParseRegister はユーザー登録リクエストを検証する。
// パスワードは8文字以上で、大文字・小文字・数字・記号を各1文字以上含むこと。
func ParseRegister(req RegisterRequest) (RegisterInput, FieldErrors) {
	var errs FieldErrors

	if req.Email == "" {
		errs = errs.add("email", "メールアドレスは必須です。")
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		errs = errs.add("email", "メールアドレスの形式が正しくありません。")
	}

	if req.Password == "" {
		errs = errs.add("password", "パスワードは必須です。")
	} else {
		if len(req.Password) < minPasswordLen {
			errs = errs.add("password", "パスワードは8文字以上で入力してください。")
		}
		if !upperRe.MatchString(req.Password) {
			errs = errs.add("password", "大文字を1文字以上含めてください。")
		}
		if !lowerRe.MatchString(req.Password) {
			errs = errs.add("password", "小文字を1文字以上含めてください。")
		}
		if !digitRe.MatchString(req.Password) {
			errs = errs.add("password", "数字を1文字以上含めてください。")
		}
		if !specialRe.MatchString(req.Password) {
			errs = errs.add("password", "記号を1文字以上含めてください。")
		}
	}

	if len(errs) > 0 {
		return RegisterInput{}, errs
	}

	return RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	}, nil
}

// --- プロジェクト ---

// ProjectRequest はプロジェクト作成・更新リクエストのボディ。
type ProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// ProjectInput は検証済みのプロジェクト入力。
// Statusが空の場合は未指定を意味する（作成時はactive、更新時は既存値を維持）。
type ProjectInput struct {
	Title       string
	Description string
	Status      model.ProjectStatus
}

// ParseProject はプロジェクトリクエストを検証する。
// 作成・更新のどちらでも同じスキーマを使用する（更新でもタイトルは必須）。
func ParseProject(req ProjectRequest) (ProjectInput, FieldErrors) {
	var errs FieldErrors

	if req.Title == "" {
		errs = errs.add("title", "タイトルは必須です。")
	} else if len([]rune(req.Title)) > maxProjectTitleLen {
		errs = errs.add("title", "タイトルは120文字以内で入力してください。")
	}

	status := model.ProjectStatus(req.Status)
	if req.Status != "" && !status.IsValid() {
		errs = errs.add("status", "statusにはactiveまたはcompletedを指定してください。")
	}

	if len(errs) > 0 {
		return ProjectInput{}, errs
	}

	return ProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
	}, nil
}

// --- タスク ---

// TaskRequest はタスク作成・更新リクエストのボディ。
// due_dateはRFC 3339または"2006-01-02"形式の文字列を受け付ける。
type TaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	DueDate     *string `json:"due_date"`
}

// TaskInput は検証済みのタスク入力。
// Statusが空の場合は未指定を意味する（作成時はtodo、更新時は既存値を維持）。
// DueDateがnilの場合は期限なし。
type TaskInput struct {
	Title       string
	Description string
	Status      model.TaskStatus
	DueDate     *time.Time
}

// ParseTask はタスクリクエストを検証する。
// 作成・更新のどちらでも同じスキーマを使用する（更新でもタイトルは必須）。
func ParseTask(req TaskRequest) (TaskInput, FieldErrors) {
	var errs FieldErrors

	if req.Title == "" {
		errs = errs.add("title", "タイトルは必須です。")
	} else if len([]rune(req.Title)) > maxTaskTitleLen {
		errs = errs.add("title", "タイトルは200文字以内で入力してください。")
	}

	status := model.TaskStatus(req.Status)
	if req.Status != "" && !status.IsValid() {
		errs = errs.add("status", "statusにはtodo、in-progress、doneのいずれかを指定してください。")
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		parsed, err := parseDate(*req.DueDate)
		if err != nil {
			errs = errs.add("due_date", "日付の形式が正しくありません。")
		} else {
			dueDate = &parsed
		}
	}

	if len(errs) > 0 {
		return TaskInput{}, errs
	}

	return TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		DueDate:     dueDate,
	}, nil
}

// parseDate はRFC 3339形式を優先し、日付のみの形式にもフォールバックする。
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
