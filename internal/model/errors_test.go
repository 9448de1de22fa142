package model

import (
	"errors"
	"fmt"
	"testing"
)

// APIErrorがerrorインターフェースを満たし、errors.Asで取り出せることを検証
func TestAPIError_ErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("service failed: %w", NewProjectNotFoundError("p-1"))

	var apiErr *APIError
	if !errors.As(wrapped, &apiErr) {
		t.Fatal("errors.As should unwrap *APIError")
	}
	if apiErr.Code != ErrCodeProjectNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, ErrCodeProjectNotFound)
	}
}

// 認証失敗エラーがメール未登録とパスワード不一致で同一であることを検証
func TestNewInvalidCredentialsError_NoEnumerationSignal(t *testing.T) {
	a := NewInvalidCredentialsError()
	b := NewInvalidCredentialsError()

	if a.Code != b.Code || a.Message != b.Message {
		t.Error("invalid credentials errors must be indistinguishable")
	}
}

func TestAPIError_ErrorFormat(t *testing.T) {
	err := NewTaskForbiddenError()
	want := fmt.Sprintf("[%s] %s", err.Code, err.Message)
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
