package sessions

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	sessionCookieName = "sellmystuff-session"

	uploadAuthSessionKey = "uploadAuthenticated"
	adminAuthSessionKey  = "adminAuthenticated"
)

type SessionStore interface {
	IsUploadAuthenticated(r *http.Request) bool
	SetUploadAuthenticated(w http.ResponseWriter, r *http.Request) error

	IsAdminAuthenticated(r *http.Request) bool
	SetAdminAuthenticated(w http.ResponseWriter, r *http.Request) error

	ClearSession(w http.ResponseWriter, r *http.Request) error
}

type CookieSessionStore struct {
	store *sessions.CookieStore
}

func NewCookieSessionStore(keyPairs ...[]byte) *CookieSessionStore {
	store := sessions.NewCookieStore(keyPairs...)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(7 * 24 * time.Hour / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieSessionStore{store: store}
}

func (c *CookieSessionStore) getSession(r *http.Request) *sessions.Session {
	session, err := c.store.Get(r, sessionCookieName)
	if err != nil {
		log.Printf("Error getting session: %v", err)
	}
	return session
}

func (c *CookieSessionStore) IsUploadAuthenticated(r *http.Request) bool {
	return c.flag(r, uploadAuthSessionKey)
}

func (c *CookieSessionStore) SetUploadAuthenticated(w http.ResponseWriter, r *http.Request) error {
	return c.setFlag(w, r, uploadAuthSessionKey)
}

func (c *CookieSessionStore) IsAdminAuthenticated(r *http.Request) bool {
	return c.flag(r, adminAuthSessionKey)
}

func (c *CookieSessionStore) SetAdminAuthenticated(w http.ResponseWriter, r *http.Request) error {
	return c.setFlag(w, r, adminAuthSessionKey)
}

func (c *CookieSessionStore) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session := c.getSession(r)
	if session == nil {
		return nil
	}
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

func (c *CookieSessionStore) flag(r *http.Request, key string) bool {
	session := c.getSession(r)
	if session == nil {
		return false
	}
	value, ok := session.Values[key].(bool)
	return ok && value
}

func (c *CookieSessionStore) setFlag(w http.ResponseWriter, r *http.Request, key string) error {
	session := c.getSession(r)
	if session == nil {
		return nil
	}
	session.Values[key] = true
	return session.Save(r, w)
}
