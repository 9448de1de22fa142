package handler

import (
	"fmt"
	"net/http"
)

// PageHandler はブラウザが直接開く画面ルートのハンドラー。
// フロントエンドはSPAとして別配信される想定のため、ここでは
// ルートゲートの判定対象となる最小限のページのみ返す。
type PageHandler struct{}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

func writePage(w http.ResponseWriter, title string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>%s</title></head><body><h1>%s</h1></body></html>", title, title)
}

// Home はトップページを返す。
// GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	writePage(w, "PM Tool")
}

// Login はログイン画面を返す。
// GET /login
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	writePage(w, "ログイン")
}

// Register は登録画面を返す。
// GET /register
func (h *PageHandler) Register(w http.ResponseWriter, r *http.Request) {
	writePage(w, "ユーザー登録")
}

// Dashboard はダッシュボード画面を返す。
// GET /dashboard
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writePage(w, "ダッシュボード")
}

// Projects はプロジェクト画面を返す。
// GET /projects と GET /projects/*
func (h *PageHandler) Projects(w http.ResponseWriter, r *http.Request) {
	writePage(w, "プロジェクト")
}
