package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// 画面ルートの分類。
// publicPageRoutesは完全一致、protectedPagePrefixesは前方一致で判定する。
var (
	publicPageRoutes      = []string{"/login", "/register"}
	protectedPagePrefixes = []string{"/dashboard", "/projects"}
)

// loginPath はリダイレクト先のログイン画面パス。
const loginPath = "/login"

// dashboardPath は認証済みユーザーの既定の着地点。
const dashboardPath = "/dashboard"

// NewRouteGateMiddleware は画面ルートの認証ゲートを返す。
// API（/api配下）ではなく、ブラウザが直接開くページに適用する。
//
// 判定はセッショントークンの有無と有効性のみで行い、結果は3通り:
//   - 未認証が保護ルートへ → ログイン画面へ307リダイレクト。
//     元のパスはcallbackUrlクエリに保存する。
//   - 認証済みが公開ルート（ログイン・登録画面）またはルート(/)へ → ダッシュボードへ307リダイレクト。
//   - それ以外 → 素通し。
//
// トークンが無効な場合は未認証として扱う。Cookieの削除は行わない。
func NewRouteGateMiddleware(parser TokenParser) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authenticated := false
			if token := sessionTokenFromRequest(r); token != "" {
				if _, err := parser.Parse(token); err == nil {
					authenticated = true
				}
			}

			path := r.URL.Path

			if authenticated {
				if isPublicPage(path) || path == "/" {
					http.Redirect(w, r, dashboardPath, http.StatusTemporaryRedirect)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if isProtectedPage(path) {
				target := loginPath + "?callbackUrl=" + url.QueryEscape(path)
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isPublicPage は公開ページ（完全一致）かどうかを判定する。
func isPublicPage(path string) bool {
	for _, p := range publicPageRoutes {
		if path == p {
			return true
		}
	}
	return false
}

// isProtectedPage は保護ページ（前方一致）かどうかを判定する。
// /projectsそのものと/projects/配下の両方に一致する。
func isProtectedPage(path string) bool {
	for _, prefix := range protectedPagePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
