package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/praxis-compliance/praxis/internal/shared"
)

func newTestManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.SetIdentity("42", "7", "firm_admin")
	sess.Set("theme", "dark")

	res := httptest.NewRecorder()
	if err := manager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}

	cookies := res.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != manager.CookieName() {
		t.Fatalf("expected one session cookie, got %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatalf("session cookie must be http only")
	}

	// A second request carrying the cookie sees the same identity.
	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.AddCookie(&http.Cookie{Name: manager.CookieName(), Value: sess.ID})
	loaded, err := manager.Load(ctx, again)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.User() != "42" || loaded.Tenant() != "7" || loaded.Role() != "firm_admin" {
		t.Fatalf("identity not persisted: user=%q tenant=%q role=%q", loaded.User(), loaded.Tenant(), loaded.Role())
	}
	if loaded.Get("theme") != "dark" {
		t.Fatalf("expected stored value to survive the round trip")
	}
}

func TestSessionDestroyClearsState(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.SetIdentity("42", "7", "viewer")

	res := httptest.NewRecorder()
	if err := manager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}

	manager.Destroy(sess)
	out := httptest.NewRecorder()
	if err := manager.Commit(ctx, out, req, sess); err != nil {
		t.Fatalf("commit destroy: %v", err)
	}

	cookies := out.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("expected expiring cookie, got %v", cookies)
	}

	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.AddCookie(&http.Cookie{Name: manager.CookieName(), Value: sess.ID})
	loaded, err := manager.Load(ctx, again)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.User() != "" {
		t.Fatalf("destroyed session must not retain identity")
	}
}

func TestSessionUnknownCookieGetsFreshSession(t *testing.T) {
	manager := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: manager.CookieName(), Value: "stale-id"})
	sess, err := manager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sess.User() != "" || sess.Role() != "" {
		t.Fatalf("stale cookie must yield an empty session")
	}
}
