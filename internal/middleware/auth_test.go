package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SohomCh/drive/internal/ctxkeys"
	"github.com/SohomCh/drive/internal/model"
	"github.com/SohomCh/drive/internal/repository"
	"github.com/SohomCh/drive/internal/service"
)

type stubUserRepo struct {
	user    *model.User
	byIDErr error
}

func (s *stubUserRepo) Create(*model.User) error { return nil }

func (s *stubUserRepo) ByID(id string) (*model.User, error) {
	if s.byIDErr != nil {
		return nil, s.byIDErr
	}
	if s.user != nil && s.user.ID == id {
		copied := *s.user
		return &copied, nil
	}
	return nil, repository.ErrUserNotFound
}

func (s *stubUserRepo) ByUsername(username string) (*model.User, error) {
	if s.user != nil && s.user.Username == username {
		copied := *s.user
		return &copied, nil
	}
	return nil, repository.ErrUserNotFound
}

func newAuthStack(t *testing.T, expiry time.Duration) (*service.AuthService, *service.UserService, *model.User) {
	t.Helper()

	user := &model.User{
		ID:           "u-1",
		Username:     "alice123",
		Email:        "alice123@example.com",
		PasswordHash: "$2a$10$hash",
	}
	repo := &stubUserRepo{user: user}

	return service.NewAuthService(repo, "test-secret", expiry, false), service.NewUserService(repo), user
}

func TestAuth_ValidToken(t *testing.T) {
	t.Parallel()

	authSvc, userSvc, user := newAuthStack(t, time.Hour)

	token, err := authSvc.GenerateJWT(user)
	if err != nil {
		t.Fatalf("GenerateJWT error: %v", err)
	}

	var got *model.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ctxkeys.User(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.AddCookie(&http.Cookie{Name: service.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()

	Auth(authSvc, userSvc)(next).ServeHTTP(rec, req)

	if got == nil {
		t.Fatalf("expected user bound to context")
	}
	if got.ID != "u-1" {
		t.Fatalf("unexpected user id: %q", got.ID)
	}
	if got.PasswordHash != "" {
		t.Fatalf("password hash must not reach the request context")
	}
}

func TestAuth_NoCookie(t *testing.T) {
	t.Parallel()

	authSvc, userSvc, _ := newAuthStack(t, time.Hour)

	var got *model.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ctxkeys.User(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	rec := httptest.NewRecorder()

	Auth(authSvc, userSvc)(next).ServeHTTP(rec, req)

	if got != nil {
		t.Fatalf("expected no user without cookie, got %+v", got)
	}
}

func TestAuth_ExpiredTokenClearsCookie(t *testing.T) {
	t.Parallel()

	authSvc, userSvc, user := newAuthStack(t, -time.Minute)

	token, err := authSvc.GenerateJWT(user)
	if err != nil {
		t.Fatalf("GenerateJWT error: %v", err)
	}

	var got *model.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ctxkeys.User(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.AddCookie(&http.Cookie{Name: service.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()

	Auth(authSvc, userSvc)(next).ServeHTTP(rec, req)

	if got != nil {
		t.Fatalf("expected no user for expired token")
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == service.SessionCookieName && c.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected the invalid cookie to be cleared")
	}
}

func TestAuth_DeletedUserClearsCookie(t *testing.T) {
	t.Parallel()

	user := &model.User{ID: "u-1", Username: "alice123", Email: "alice123@example.com"}
	repo := &stubUserRepo{} // token holder no longer exists
	authSvc := service.NewAuthService(repo, "test-secret", time.Hour, false)
	userSvc := service.NewUserService(repo)

	token, err := authSvc.GenerateJWT(user)
	if err != nil {
		t.Fatalf("GenerateJWT error: %v", err)
	}

	var got *model.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ctxkeys.User(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.AddCookie(&http.Cookie{Name: service.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()

	Auth(authSvc, userSvc)(next).ServeHTTP(rec, req)

	if got != nil {
		t.Fatalf("expected no user for a deleted account")
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == service.SessionCookieName && c.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected the stale cookie to be cleared")
	}
}

func TestAuth_BackendFailureKeepsCookie(t *testing.T) {
	t.Parallel()

	user := &model.User{ID: "u-1", Username: "alice123", Email: "alice123@example.com"}
	repo := &stubUserRepo{user: user, byIDErr: errors.New("connection refused")}
	authSvc := service.NewAuthService(repo, "test-secret", time.Hour, false)
	userSvc := service.NewUserService(repo)

	token, err := authSvc.GenerateJWT(user)
	if err != nil {
		t.Fatalf("GenerateJWT error: %v", err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	})

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.AddCookie(&http.Cookie{Name: service.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()

	Auth(authSvc, userSvc)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == service.SessionCookieName {
			t.Fatalf("a backend failure must not touch the session cookie")
		}
	}
}

func TestRequireAuth_Unauthenticated(t *testing.T) {
	t.Parallel()

	next := func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}

	// API-style request gets a 401
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	rec := httptest.NewRecorder()
	RequireAuth(next)(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	// Browser page request gets a redirect to login
	req = httptest.NewRequest(http.MethodGet, "/home", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec = httptest.NewRecorder()
	RequireAuth(next)(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/user/login" {
		t.Fatalf("unexpected redirect target: %q", loc)
	}
}

func TestRequireAuth_Authenticated(t *testing.T) {
	t.Parallel()

	called := false
	next := func(w http.ResponseWriter, r *http.Request) {
		called = true
	}

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req = req.WithContext(ctxkeys.WithUser(req.Context(), &model.User{ID: "u-1"}))
	rec := httptest.NewRecorder()
	RequireAuth(next)(rec, req)

	if !called {
		t.Fatalf("expected handler to run for authenticated request")
	}
}

func TestRequireGuest_RedirectsAuthenticated(t *testing.T) {
	t.Parallel()

	next := func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}

	req := httptest.NewRequest(http.MethodGet, "/user/login", nil)
	req = req.WithContext(ctxkeys.WithUser(req.Context(), &model.User{ID: "u-1"}))
	rec := httptest.NewRecorder()
	RequireGuest(next)(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/home" {
		t.Fatalf("unexpected redirect target: %q", loc)
	}
}
