package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

type stubAuthService struct {
	signupFn func(ctx context.Context, email, password string) (*domain.Account, error)
	loginFn  func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	logoutFn func(ctx context.Context, accountID string) error
}

func (s *stubAuthService) Signup(ctx context.Context, email, password string) (*domain.Account, error) {
	return s.signupFn(ctx, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, accountID string) error {
	return s.logoutFn(ctx, accountID)
}

type stubAccountService struct {
	currentFn      func(ctx context.Context, accountID string) (*domain.Account, error)
	subscriptionFn func(ctx context.Context, accountID string, tier *string) (domain.Subscription, error)
	avatarFn       func(ctx context.Context, accountID string, upload *ports.AvatarUpload) (string, error)
}

func (s *stubAccountService) Current(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.currentFn(ctx, accountID)
}

func (s *stubAccountService) UpdateSubscription(ctx context.Context, accountID string, tier *string) (domain.Subscription, error) {
	return s.subscriptionFn(ctx, accountID, tier)
}

func (s *stubAccountService) UpdateAvatar(ctx context.Context, accountID string, upload *ports.AvatarUpload) (string, error) {
	return s.avatarFn(ctx, accountID, upload)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// jsonContext builds a context for a JSON request. A non-empty accountID
// simulates the Auth middleware having run.
func jsonContext(e *echo.Echo, method, target, body, accountID string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if accountID != "" {
		c.Set(CtxAccountID, accountID)
	}
	return c, rec
}
