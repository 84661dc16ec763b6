package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withCookies(rec *httptest.ResponseRecorder, target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}

func TestPrincipalRoundTrip(t *testing.T) {
	m := NewManager("test-secret", 0)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	rec := httptest.NewRecorder()
	want := Principal{UserID: 7, Username: "alice", Role: "admin"}
	require.NoError(t, m.SetPrincipal(req, rec, want))

	got, ok := m.Principal(withCookies(rec, "/me"))
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestPrincipalAbsentWithoutCookie(t *testing.T) {
	m := NewManager("test-secret", 0)

	_, ok := m.Principal(httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.False(t, ok)
}

func TestSearchStringPerResource(t *testing.T) {
	m := NewManager("test-secret", 0)

	req := httptest.NewRequest(http.MethodGet, "/videos", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, m.SetSearchString(req, rec, "videos", "shark"))

	next := withCookies(rec, "/videos")
	assert.Equal(t, "shark", m.SearchString(next, "videos"))
	assert.Equal(t, "", m.SearchString(next, "users"), "filters are scoped per resource")
}

func TestClearDropsEverything(t *testing.T) {
	m := NewManager("test-secret", 0)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, m.SetPrincipal(req, rec, Principal{UserID: 7, Username: "alice", Role: "member"}))

	loggedIn := withCookies(rec, "/auth/logout")
	clearRec := httptest.NewRecorder()
	require.NoError(t, m.Clear(loggedIn, clearRec))

	after := withCookies(clearRec, "/me")
	_, ok := m.Principal(after)
	assert.False(t, ok)
}
