package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rizesql/cas/internal/assert"
	"github.com/rizesql/cas/internal/directory"
	"github.com/rizesql/cas/internal/protocol"
	"github.com/rizesql/cas/internal/session"
	"github.com/rizesql/cas/internal/testkit"
)

func TestCookie_RoundTrip(t *testing.T) {
	h := testkit.NewHarness(t)
	p := h.CreateUser(t.Context(), "alice", "hunter2", nil)

	cookie := h.SessionCookie(p)
	assert.Equal(t, cookie.Name, session.TGCCookieName)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(cookie)

	current, ok := h.Sessions.Current(t.Context(), req)
	assert.True(t, ok)
	assert.Equal(t, current.Login(), protocol.Login("alice"))
}

func TestCookie_NoCookie(t *testing.T) {
	h := testkit.NewHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	_, ok := h.Sessions.Current(t.Context(), req)
	assert.Equal(t, ok, false)
}

func TestCookie_Expired(t *testing.T) {
	h := testkit.NewHarness(t)
	p := h.CreateUser(t.Context(), "alice", "hunter2", nil)

	cookie := h.SessionCookie(p)
	h.Clock.Tick(2 * time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(cookie)

	_, ok := h.Sessions.Current(t.Context(), req)
	assert.Equal(t, ok, false)
}

func TestCookie_RejectsNonSessionTicket(t *testing.T) {
	h := testkit.NewHarness(t)
	p := h.CreateUser(t.Context(), "alice", "hunter2", nil)

	// A service ticket is signed by the same codec but must not pass
	// for a session.
	st := h.IssueTicket(t.Context(), protocol.TypeST, p, "https://app.test/", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: session.TGCCookieName, Value: st})

	_, ok := h.Sessions.Current(t.Context(), req)
	assert.Equal(t, ok, false)
}

func TestCookie_Destroy(t *testing.T) {
	h := testkit.NewHarness(t)
	p := h.CreateUser(t.Context(), "alice", "hunter2", nil)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(h.SessionCookie(p))

	rr := httptest.NewRecorder()
	h.Sessions.Destroy(t.Context(), rr, req)

	cookies := rr.Result().Cookies()
	assert.Equal(t, len(cookies), 1)
	assert.Equal(t, cookies[0].Name, session.TGCCookieName)
	assert.Equal(t, cookies[0].Value, "")
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestCookie_DestroyWithoutSession(t *testing.T) {
	h := testkit.NewHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	rr := httptest.NewRecorder()
	h.Sessions.Destroy(t.Context(), rr, req)

	// No cookie to clear, no Set-Cookie emitted.
	assert.Equal(t, len(rr.Result().Cookies()), 0)
}

func TestCookie_Authenticate(t *testing.T) {
	h := testkit.NewHarness(t)
	h.CreateUser(t.Context(), "alice", "hunter2", nil)

	p, err := h.Sessions.Authenticate(t.Context(), "alice", "hunter2")
	assert.Err(t, err, nil)
	assert.Equal(t, p.Login(), protocol.Login("alice"))

	_, err = h.Sessions.Authenticate(t.Context(), "alice", "wrong")
	assert.Err(t, err, directory.ErrBadCredentials)

	_, err = h.Sessions.Authenticate(t.Context(), "nobody", "hunter2")
	assert.Err(t, err, directory.ErrBadCredentials)
}

func TestNonces_SingleUse(t *testing.T) {
	h := testkit.NewHarness(t)

	lt, err := h.Nonces.Issue(t.Context())
	assert.Err(t, err, nil)
	assert.Equal(t, protocol.TypeOf(lt), protocol.TypeLT)

	ok, err := h.Nonces.Verify(t.Context(), lt)
	assert.Err(t, err, nil)
	assert.True(t, ok)

	ok, err = h.Nonces.Verify(t.Context(), lt)
	assert.Err(t, err, nil)
	assert.Equal(t, ok, false)
}

func TestNonces_Expiry(t *testing.T) {
	h := testkit.NewHarness(t)

	lt, err := h.Nonces.Issue(t.Context())
	assert.Err(t, err, nil)

	h.Clock.Tick(10 * time.Minute)

	ok, err := h.Nonces.Verify(t.Context(), lt)
	assert.Err(t, err, nil)
	assert.Equal(t, ok, false)
}

func TestNonces_Unknown(t *testing.T) {
	h := testkit.NewHarness(t)

	ok, err := h.Nonces.Verify(t.Context(), "LT-neverissued")
	assert.Err(t, err, nil)
	assert.Equal(t, ok, false)

	ok, err = h.Nonces.Verify(t.Context(), "")
	assert.Err(t, err, nil)
	assert.Equal(t, ok, false)
}
