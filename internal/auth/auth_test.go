package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func sessionRequest(t *testing.T, userID uint) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	CreateSession(rec, userID)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	req := sessionRequest(t, 42)
	uid, ok := ParseSession(req)
	if !ok || uid != 42 {
		t.Fatalf("ParseSession = (%d, %v), want (42, true)", uid, ok)
	}
}

func TestParseSessionRejectsTamperedCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	CreateSession(rec, 42)
	cookie := rec.Result().Cookies()[0]

	// swap the user id but keep the original signature
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	tampered := *cookie
	tampered.Value = "99" + cookie.Value[2:]
	req.AddCookie(&tampered)
	if _, ok := ParseSession(req); ok {
		t.Fatal("tampered cookie must not parse")
	}
}

func TestParseSessionRejectsMissingOrMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := ParseSession(req); ok {
		t.Fatal("no cookie must not parse")
	}
	req.AddCookie(&http.Cookie{Name: "session", Value: "garbage-without-separator"})
	if _, ok := ParseSession(req); ok {
		t.Fatal("malformed cookie must not parse")
	}
}

func TestMiddlewareAttachesUserID(t *testing.T) {
	var got uint
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = UserIDFromContext(r.Context())
	})
	rec := httptest.NewRecorder()
	Middleware(next).ServeHTTP(rec, sessionRequest(t, 7))
	if !ok || got != 7 {
		t.Fatalf("context user id = (%d, %v), want (7, true)", got, ok)
	}
}

func TestRequireAuthWithoutPrincipal(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})
	rec := httptest.NewRecorder()
	RequireAuth(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q, want application/json", ct)
	}
}

func TestRequireAuthVerifierRejectsDeletedUser(t *testing.T) {
	SetUserVerifier(func(_ context.Context, _ uint) bool { return false })
	t.Cleanup(func() { SetUserVerifier(nil) })

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for a deleted user")
	})
	rec := httptest.NewRecorder()
	Middleware(RequireAuth(next)).ServeHTTP(rec, sessionRequest(t, 42))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	// the stale session cookie gets cleared
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" && c.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("stale session cookie should be cleared")
	}
}
