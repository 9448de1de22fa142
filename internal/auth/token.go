package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/pmtool/internal/model"
)

// tokenClaims はJWTに格納するクレーム。
// uidが対象ユーザーID、iat/expは標準クレームを使用する。
type tokenClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenManager はステートレスセッショントークンの発行と検証を行う。
// 署名鍵とTTLは起動時に1回設定され、以後変更されない。
// サーバー側にセッションテーブルは持たないため、失効は鍵のローテーションか
// 自然期限切れのみ。
type TokenManager struct {
	secret []byte
	ttl    time.Duration

	// now はテストから時計を差し替えるためのフック。
	now func() time.Time
}

// NewTokenManager はTokenManagerを生成する。
// secretが空、またはttlが正でない場合はエラーを返す。
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session TTL must be positive")
	}

	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue は指定ユーザーのセッショントークンを発行する。
// 発行は(ユーザーID, 現在時刻, 署名鍵)の純関数であり、副作用を持たない。
func (m *TokenManager) Issue(userID string) (string, error) {
	now := m.now()

	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// Parse はトークンを検証し、セッションクレームを返す。
// 署名不正・形式不正・期限切れ（exp以降）はすべてエラーになる。
func (m *TokenManager) Parse(tokenString string) (*model.SessionClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.UserID == "" {
		return nil, errors.New("session token has no user id")
	}

	sc := &model.SessionClaims{UserID: claims.UserID}
	if claims.IssuedAt != nil {
		sc.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		sc.ExpiresAt = claims.ExpiresAt.Time
	}

	return sc, nil
}
