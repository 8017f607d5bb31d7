package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

type fakeSessions struct {
	account *domain.Account
	token   string
}

func (f *fakeSessions) Signup(_ context.Context, email, _ string) (*domain.Account, error) {
	if email == f.account.Email {
		return nil, domain.ErrAccountExists
	}
	return &domain.Account{Email: email, Subscription: domain.DefaultSubscription}, nil
}

func (f *fakeSessions) Login(_ context.Context, email, password string) (*ports.LoginResult, error) {
	if email != f.account.Email || password != "secret" {
		return nil, domain.ErrInvalidCredentials
	}
	return &ports.LoginResult{Token: f.token, Account: f.account}, nil
}

func (f *fakeSessions) Logout(context.Context, string) error {
	f.token = ""
	return nil
}

func (f *fakeSessions) Authenticate(_ context.Context, token string) (*domain.Account, error) {
	if f.token == "" || token != f.token {
		return nil, domain.ErrUnauthorized
	}
	return f.account, nil
}

func (f *fakeSessions) Current(context.Context, string) (*domain.Account, error) {
	return f.account, nil
}

func (f *fakeSessions) UpdateSubscription(_ context.Context, _ string, tier *string) (domain.Subscription, error) {
	if tier == nil {
		return "", domain.MissingField("subscription")
	}
	if !domain.Subscription(*tier).Valid() {
		return "", domain.ErrInvalidSubscription
	}
	f.account.Subscription = domain.Subscription(*tier)
	return f.account.Subscription, nil
}

func (f *fakeSessions) UpdateAvatar(context.Context, string, *ports.AvatarUpload) (string, error) {
	return "/avatars/acc-1-x.png", nil
}

func newTestRouter(t *testing.T, avatarDir string) (http.Handler, *fakeSessions) {
	t.Helper()
	sessions := &fakeSessions{
		account: &domain.Account{ID: "acc-1", Email: "alice@example.com", Subscription: domain.SubscriptionStarter},
		token:   "live-token",
	}
	reg := prometheus.NewRegistry()
	e := NewRouter(Deps{
		Auth:          sessions,
		Authenticator: sessions,
		Accounts:      sessions,
		AvatarPrefix:  "/avatars",
		AvatarDir:     avatarDir,
		Registerer:    reg,
		Gatherer:      reg,
		Log:           zerolog.Nop(),
	})
	return e, sessions
}

func do(h http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestRouter_SessionFlow(t *testing.T) {
	h, _ := newTestRouter(t, "")

	rec := do(h, http.MethodPost, "/api/users/signup", `{"email":"bob@example.com","password":"pw"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(h, http.MethodPost, "/api/users/signup", `{"email":"alice@example.com","password":"pw"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: expected 409, got %d", rec.Code)
	}
	if body := decode(t, rec); body["status"] != "error" || body["code"] != float64(409) {
		t.Fatalf("unexpected error envelope: %v", body)
	}

	rec = do(h, http.MethodPost, "/api/users/login", `{"email":"alice@example.com","password":"nope"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad login: expected 400, got %d", rec.Code)
	}

	rec = do(h, http.MethodPost, "/api/users/login", `{"email":"alice@example.com","password":"secret"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}
	token, _ := decode(t, rec)["token"].(string)

	rec = do(h, http.MethodGet, "/api/users/current", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("current: expected 200, got %d", rec.Code)
	}

	rec = do(h, http.MethodPatch, "/api/users", `{"subscription":"gold"}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid tier: expected 400, got %d", rec.Code)
	}
	rec = do(h, http.MethodPatch, "/api/users/", `{"subscription":"pro"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("tier update: expected 200, got %d", rec.Code)
	}

	rec = do(h, http.MethodPost, "/api/users/logout", "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rec.Code)
	}

	rec = do(h, http.MethodGet, "/api/users/current", "", token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("after logout: expected 401, got %d", rec.Code)
	}
}

func TestRouter_GateCoversProtectedRoutes(t *testing.T) {
	h, _ := newTestRouter(t, "")

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/api/users/current"},
		{http.MethodPost, "/api/users/logout"},
		{http.MethodPatch, "/api/users"},
		{http.MethodPatch, "/api/users/avatars"},
	} {
		rec := do(h, r.method, r.path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: expected 401, got %d", r.method, r.path, rec.Code)
		}
		rec = do(h, r.method, r.path, "", "forged")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s with bad token: expected 401, got %d", r.method, r.path, rec.Code)
		}
	}
}

func TestRouter_AvatarWithoutFile(t *testing.T) {
	h, _ := newTestRouter(t, "")

	rec := do(h, http.MethodPatch, "/api/users/avatars", `{}`, "live-token")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := decode(t, rec)["message"]; msg != domain.ErrMissingFile.Error() {
		t.Fatalf("message = %v", msg)
	}
}

func TestRouter_OpsEndpoints(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "acc-1-x.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	h, _ := newTestRouter(t, dir)

	// Generate at least one observation before scraping.
	do(h, http.MethodGet, "/health", "", "")

	for _, path := range []string{"/health", "/health/ready", "/metrics", "/swagger/index.html", "/avatars/acc-1-x.png"} {
		rec := do(h, http.MethodGet, path, "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, rec.Code)
		}
	}

	rec := do(h, http.MethodGet, "/metrics", "", "")
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Errorf("metrics output missing request counter")
	}
	if !strings.Contains(rec.Body.String(), "accounts_logouts_total") {
		t.Errorf("metrics output missing account metrics")
	}

	rec = do(h, http.MethodGet, "/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if body := decode(t, rec); body["status"] != "error" {
		t.Fatalf("unexpected envelope %v", body)
	}
}
