// Package pagination はページ番号ベースのページネーションを提供する。
// skip = (page - 1) * limit のオフセット方式で、カーソル方式は使用しない。
package pagination

import (
	"net/url"
	"strconv"
)

const (
	// DefaultPage はpageパラメータ省略時のページ番号。
	DefaultPage = 1
	// DefaultLimit はlimitパラメータ省略時の1ページあたりの件数。
	DefaultLimit = 10
)

// Params はリクエストから解析されたページネーションパラメータ。
type Params struct {
	Page  int
	Limit int
}

// Meta はページネーションのレスポンスメタデータ。
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ParseQuery はクエリパラメータからParamsを解析する。
// page・limitが未指定・数値でない・正でない場合はデフォルト値を使用する。
// maxLimitが正の場合、limitはその値を上限とする。
func ParseQuery(q url.Values, maxLimit int) Params {
	page := atoiOrDefault(q.Get("page"), DefaultPage)
	if page < 1 {
		page = DefaultPage
	}

	limit := atoiOrDefault(q.Get("limit"), DefaultLimit)
	if limit < 1 {
		limit = DefaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}

	return Params{Page: page, Limit: limit}
}

// Offset は読み飛ばす件数を返す。
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewMeta は総件数からページネーションメタデータを計算する。
// total_pagesはceil(total / limit)。totalが0の場合は0になる。
func NewMeta(p Params, total int) Meta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}

	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

func atoiOrDefault(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return i
}
