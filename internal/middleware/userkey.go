package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

type ctxKey int

const userKeyCtx ctxKey = iota

// UserKeyGuard binds requests to a signed userKey when a secret is
// configured. Without a secret every request passes and userKeys are
// trusted as sent.
type UserKeyGuard struct {
	secret []byte
}

func NewUserKeyGuard(secret []byte) *UserKeyGuard {
	return &UserKeyGuard{secret: secret}
}

func (g *UserKeyGuard) Enabled() bool {
	return g != nil && len(g.secret) > 0
}

func (g *UserKeyGuard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			writeJSONError(w, http.StatusUnauthorized, "missing token")
			return
		}
		tokenStr := strings.TrimPrefix(authz, "Bearer ")
		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return g.secret, nil
		})
		if err != nil || !token.Valid {
			writeJSONError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if claims.Subject == "" {
			writeJSONError(w, http.StatusUnauthorized, "invalid subject")
			return
		}
		ctx := context.WithValue(r.Context(), userKeyCtx, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Issue signs a token whose subject is userKey.
func (g *UserKeyGuard) Issue(userKey string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userKey,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// VerifiedUserKey returns the token subject set by Require, if any.
func VerifiedUserKey(ctx context.Context) (string, bool) {
	k, ok := ctx.Value(userKeyCtx).(string)
	return k, ok
}

// UserKeyAllowed reports whether the request may act on userKey: always
// when no token was verified, otherwise only for the token's own key.
func UserKeyAllowed(r *http.Request, userKey string) bool {
	verified, ok := VerifiedUserKey(r.Context())
	return !ok || verified == userKey
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
