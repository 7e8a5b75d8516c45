package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func serveCartSession(req *http.Request) (*httptest.ResponseRecorder, string) {
	var session string
	handler := CartSession(time.Hour, false, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session = CartSessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp, session
}

func TestCartSessionFromHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CartSessionHeader, "abc-123")
	req.AddCookie(&http.Cookie{Name: CartSessionCookie, Value: "from-cookie"})

	resp, session := serveCartSession(req)
	if session != "abc-123" {
		t.Fatalf("expected header session, got %q", session)
	}
	if resp.Header().Get(CartSessionHeader) != "abc-123" {
		t.Fatalf("expected session echoed in header")
	}
	if len(resp.Result().Cookies()) != 0 {
		t.Fatal("expected no new cookie when a session is supplied")
	}
}

func TestCartSessionFromCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CartSessionCookie, Value: "from-cookie"})

	_, session := serveCartSession(req)
	if session != "from-cookie" {
		t.Fatalf("expected cookie session, got %q", session)
	}
}

func TestCartSessionMintsNewSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CartSessionHeader, "bad:value")

	resp, session := serveCartSession(req)
	if session == "" || strings.Contains(session, ":") {
		t.Fatalf("expected a fresh session id, got %q", session)
	}
	cookies := resp.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CartSessionCookie || cookies[0].Value != session {
		t.Fatalf("expected cart session cookie, got %+v", cookies)
	}
	if cookies[0].MaxAge != 3600 || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookie attributes %+v", cookies[0])
	}
}
