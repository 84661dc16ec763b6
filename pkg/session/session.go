// Package session wraps the cookie session store. It holds the authenticated
// principal and the per-resource last search string.
package session

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "movie_catalog_session"

	keyUserID   = "user_id"
	keyUsername = "username"
	keyRole     = "role"

	searchKeyPrefix = "search:"
)

// Principal is the authenticated identity carried by a session.
type Principal struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Manager reads and writes the cookie-backed session.
type Manager struct {
	store *sessions.CookieStore
}

// NewManager creates a session manager signing cookies with secret. maxAge is
// the cookie lifetime in seconds; 0 means browser-session lifetime.
func NewManager(secret string, maxAge int) *Manager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store}
}

// Principal returns the session principal, reporting false when the request
// carries no authenticated identity.
func (m *Manager) Principal(r *http.Request) (Principal, bool) {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		// A tampered or stale cookie decodes to an empty session.
		return Principal{}, false
	}
	userID, ok := session.Values[keyUserID].(uint)
	if !ok {
		return Principal{}, false
	}
	username, _ := session.Values[keyUsername].(string)
	role, _ := session.Values[keyRole].(string)
	return Principal{UserID: userID, Username: username, Role: role}, true
}

// SetPrincipal stores the authenticated identity in the session.
func (m *Manager) SetPrincipal(r *http.Request, w http.ResponseWriter, p Principal) error {
	session, _ := m.store.Get(r, sessionName)
	session.Values[keyUserID] = p.UserID
	session.Values[keyUsername] = p.Username
	session.Values[keyRole] = p.Role
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear drops the session, expiring the cookie.
func (m *Manager) Clear(r *http.Request, w http.ResponseWriter) error {
	session, _ := m.store.Get(r, sessionName)
	for key := range session.Values {
		delete(session.Values, key)
	}
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// SearchString returns the last search string persisted for a resource type,
// or "" when none is stored.
func (m *Manager) SearchString(r *http.Request, resource string) string {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		return ""
	}
	value, _ := session.Values[searchKeyPrefix+resource].(string)
	return value
}

// SetSearchString persists the last search string for a resource type.
// Last writer wins; the value is advisory.
func (m *Manager) SetSearchString(r *http.Request, w http.ResponseWriter, resource, value string) error {
	session, _ := m.store.Get(r, sessionName)
	session.Values[searchKeyPrefix+resource] = value
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to persist search string: %w", err)
	}
	return nil
}
