package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func echoUserKey() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		k, _ := VerifiedUserKey(r.Context())
		if !UserKeyAllowed(r, r.URL.Query().Get("userKey")) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(k))
	})
}

func TestUserKeyGuardDisabledPassesThrough(t *testing.T) {
	h := NewUserKeyGuard(nil).Require(echoUserKey())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?userKey=anyone", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "" {
		t.Errorf("status %d body %q", rec.Code, rec.Body.String())
	}
}

func TestUserKeyGuardEnforcesSubject(t *testing.T) {
	g := NewUserKeyGuard([]byte("s3cret"))
	h := g.Require(echoUserKey())
	token, err := g.Issue("u-123", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	do := func(target, authz string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := do("/?userKey=u-123", "Bearer "+token); rec.Code != http.StatusOK || rec.Body.String() != "u-123" {
		t.Errorf("valid token: %d %q", rec.Code, rec.Body.String())
	}
	if rec := do("/?userKey=someone-else", "Bearer "+token); rec.Code != http.StatusForbidden {
		t.Errorf("foreign userKey: %d", rec.Code)
	}
	if rec := do("/?userKey=u-123", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: %d", rec.Code)
	}

	other, _ := NewUserKeyGuard([]byte("other")).Issue("u-123", time.Hour)
	if rec := do("/?userKey=u-123", "Bearer "+other); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong secret: %d", rec.Code)
	}

	expired, _ := g.Issue("u-123", -time.Minute)
	if rec := do("/?userKey=u-123", "Bearer "+expired); rec.Code != http.StatusUnauthorized {
		t.Errorf("expired token: %d", rec.Code)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u-123"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if rec := do("/?userKey=u-123", "Bearer "+unsigned); rec.Code != http.StatusUnauthorized {
		t.Errorf("alg none token: %d", rec.Code)
	}
}

func TestZapRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := ZapRequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/protein?dateKey=2025-01-01", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) || fields["path"] != "/api/protein" || fields["bytes"] != int64(15) {
		t.Errorf("fields = %v", fields)
	}
	if strings.Contains(entries[0].Message, "dateKey") {
		t.Error("query string logged")
	}
}

func TestZapRecoverer(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := ZapRecoverer(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "Server error") {
		t.Errorf("response = %d %q", rec.Code, rec.Body.String())
	}
	if logs.Len() != 1 {
		t.Errorf("panic logged %d times", logs.Len())
	}
}
