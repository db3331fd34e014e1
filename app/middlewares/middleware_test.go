package middlewares

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSessionStore struct {
	uploadAuthed bool
	adminAuthed  bool
}

func (f *fakeSessionStore) IsUploadAuthenticated(*http.Request) bool { return f.uploadAuthed }
func (f *fakeSessionStore) IsAdminAuthenticated(*http.Request) bool  { return f.adminAuthed }
func (f *fakeSessionStore) SetUploadAuthenticated(http.ResponseWriter, *http.Request) error {
	return nil
}
func (f *fakeSessionStore) SetAdminAuthenticated(http.ResponseWriter, *http.Request) error {
	return nil
}
func (f *fakeSessionStore) ClearSession(http.ResponseWriter, *http.Request) error { return nil }

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestUploadAuthMiddleware(t *testing.T) {
	t.Run("unauthenticated redirects to login", func(t *testing.T) {
		var called bool
		handler := UploadAuthMiddleware(&fakeSessionStore{})(okHandler(&called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/add-item", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/add-item/login", rec.Header().Get("Location"))
		assert.False(t, called)
	})

	t.Run("authenticated passes through", func(t *testing.T) {
		var called bool
		handler := UploadAuthMiddleware(&fakeSessionStore{uploadAuthed: true})(okHandler(&called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/add-item", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})
}

func TestAdminAuthMiddleware(t *testing.T) {
	var called bool
	handler := AdminAuthMiddleware(&fakeSessionStore{})(okHandler(&called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/items", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/admin/login")
	assert.False(t, called)
}

func TestMethodOverrideMiddleware(t *testing.T) {
	var sawMethod string
	handler := MethodOverrideMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawMethod = r.Method
	}))

	req := httptest.NewRequest(http.MethodPost, "/admin/items/1", strings.NewReader("_method=delete"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, http.MethodDelete, sawMethod)
}
