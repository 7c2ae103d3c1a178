package rbac_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/qrserve/qrserve/internal/auth"
	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
	_ "github.com/qrserve/qrserve/testing"
)

type stubUserRepo struct {
	users map[int64]*auth.User
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return nil, shared.ErrInvalidCredentials
}

func (s *stubUserRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubUserRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubUserRepo) DeleteSession(ctx context.Context, id string) error { return nil }

func (s *stubUserRepo) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type gateFixture struct {
	router   chi.Router
	sessions *shared.SessionManager
	store    *memStore
}

func newGateFixture(t *testing.T, users map[int64]*auth.User) *gateFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(redisClient, "qrserve_session", "qr_session", "secret", time.Hour, false)

	store := newMemStore()
	validator := auth.NewValidator(auth.NewService(&stubUserRepo{users: users}))
	mw := rbac.Middleware{Validator: validator, Service: rbac.NewService(store)}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessions.Load(req.Context(), req)
			if err != nil {
				t.Fatalf("load session: %v", err)
			}
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Use(mw.Identify)
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(shared.PermOrdersRead))
		r.Get("/orders", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"orders":[]}`))
		})
	})
	return &gateFixture{router: r, sessions: sessions, store: store}
}

// login stores a session for the user and returns the cookie to attach.
func (f *gateFixture) login(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := f.sessions.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.SetUser(userID)
	res := httptest.NewRecorder()
	if err := f.sessions.Commit(context.Background(), res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}
	return &http.Cookie{Name: f.sessions.CookieName(), Value: sess.ID}
}

func decodeErrorBody(t *testing.T, res *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestGateRejectsMissingTokenWith401(t *testing.T) {
	f := newGateFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	body := decodeErrorBody(t, res)
	if body["error"] != "Authentication required" {
		t.Fatalf("unexpected error message %q", body["error"])
	}
	if _, ok := body["details"]; ok {
		t.Fatalf("401 must not leak details")
	}
}

func TestGateRejectsExpiredTokenWith401(t *testing.T) {
	f := newGateFixture(t, map[int64]*auth.User{})

	// A cookie whose session no longer exists in Redis behaves exactly like
	// no cookie at all.
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.AddCookie(&http.Cookie{Name: "qrserve_session", Value: "gone"})
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestGateRejectsMissingPermissionWith403(t *testing.T) {
	users := map[int64]*auth.User{
		5: {ID: 5, Email: "staff@test.local", Type: auth.TypeStaff, IsActive: true},
	}
	f := newGateFixture(t, users)
	cookie := f.login(t, "5")

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.AddCookie(cookie)
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
	body := decodeErrorBody(t, res)
	if body["error"] != "Permission denied" {
		t.Fatalf("unexpected error message %q", body["error"])
	}
}

func TestGateAllowsGrantedPermission(t *testing.T) {
	users := map[int64]*auth.User{
		5: {ID: 5, Email: "staff@test.local", Type: auth.TypeStaff, IsActive: true},
	}
	f := newGateFixture(t, users)
	ctx := context.Background()

	read, _ := f.store.UpsertPermission(ctx, shared.PermOrdersRead, "orders", "")
	f.store.addRole(1, "waiter")
	_ = f.store.AttachPermission(ctx, 1, read.ID)
	_ = f.store.AssignRoleToUser(ctx, 5, 1)

	cookie := f.login(t, "5")
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.AddCookie(cookie)
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
}

func TestAuthorizeWritesGateResponses(t *testing.T) {
	mw := rbac.Middleware{}

	// No identity at all: same generic 401 as the route gates.
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	res := httptest.NewRecorder()
	if mw.Authorize(res, req, shared.PermOrdersServe) {
		t.Fatalf("unauthenticated caller must not pass")
	}
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	body := decodeErrorBody(t, res)
	if body["error"] != "Authentication required" {
		t.Fatalf("unexpected error message %q", body["error"])
	}

	// Authenticated but lacking the key: 403 naming the requirement.
	tc := rbac.NewTenantContext(auth.Principal{UserID: 5, Type: auth.TypeStaff}, nil, []string{shared.PermOrdersKitchen})
	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	req = req.WithContext(rbac.ContextWithIdentity(req.Context(), tc))
	res = httptest.NewRecorder()
	if mw.Authorize(res, req, shared.PermOrdersServe) {
		t.Fatalf("missing permission must not pass")
	}
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
	body = decodeErrorBody(t, res)
	if body["details"] != shared.PermOrdersServe {
		t.Fatalf("403 must name the required key, got %q", body["details"])
	}

	// Granted: nothing written, caller proceeds.
	res = httptest.NewRecorder()
	if !mw.Authorize(res, req, shared.PermOrdersKitchen) {
		t.Fatalf("granted permission must pass")
	}
	if res.Body.Len() != 0 {
		t.Fatalf("authorize must not write on success: %s", res.Body.String())
	}
}

func TestGateRejectsDeactivatedUserWith401(t *testing.T) {
	users := map[int64]*auth.User{
		9: {ID: 9, Email: "gone@test.local", Type: auth.TypeStaff, IsActive: false},
	}
	f := newGateFixture(t, users)
	cookie := f.login(t, "9")

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.AddCookie(cookie)
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deactivated account, got %d", res.Code)
	}
}
