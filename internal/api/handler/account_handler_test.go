package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

func TestAccountHandler_Current(t *testing.T) {
	stub := &stubAccountService{
		currentFn: func(ctx context.Context, accountID string) (*domain.Account, error) {
			return &domain.Account{ID: accountID, Email: "alice@example.com", Subscription: domain.SubscriptionStarter}, nil
		},
	}
	c, rec := jsonContext(newEcho(), http.MethodGet, "/api/users/current", "", "acc-1")

	if err := NewAccountHandler(stub).Current(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Status string            `json:"status"`
		Code   int               `json:"code"`
		Data   map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Code != 200 || resp.Data["email"] != "alice@example.com" || resp.Data["subscription"] != "starter" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("current should only expose email and subscription: %+v", resp.Data)
	}
}

func TestAccountHandler_Current_NotFound(t *testing.T) {
	stub := &stubAccountService{
		currentFn: func(ctx context.Context, accountID string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	}
	c, _ := jsonContext(newEcho(), http.MethodGet, "/api/users/current", "", "acc-1")

	if err := NewAccountHandler(stub).Current(c); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountHandler_UpdateSubscription(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantNil bool
		want    string
	}{
		{name: "valid tier", body: `{"subscription":"pro"}`, want: "pro"},
		{name: "unknown tier", body: `{"subscription":"gold"}`, want: "gold"},
		{name: "null", body: `{"subscription":null}`, want: ""},
		{name: "number", body: `{"subscription":3}`, want: "3"},
		{name: "absent", body: `{"plan":"pro"}`, wantNil: true},
		{name: "empty body", body: "", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *string
			stub := &stubAccountService{
				subscriptionFn: func(ctx context.Context, accountID string, tier *string) (domain.Subscription, error) {
					got = tier
					return domain.SubscriptionPro, nil
				},
			}
			c, _ := jsonContext(newEcho(), http.MethodPatch, "/api/users", tt.body, "acc-1")

			if err := NewAccountHandler(stub).UpdateSubscription(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil tier, got %q", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Fatalf("tier = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestAccountHandler_UpdateSubscription_Response(t *testing.T) {
	stub := &stubAccountService{
		subscriptionFn: func(ctx context.Context, accountID string, tier *string) (domain.Subscription, error) {
			return domain.Subscription(*tier), nil
		},
	}
	c, rec := jsonContext(newEcho(), http.MethodPatch, "/api/users", `{"subscription":"business"}`, "acc-1")

	if err := NewAccountHandler(stub).UpdateSubscription(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp struct {
		Data struct {
			UpdatedStatus string `json:"updatedStatus"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Data.UpdatedStatus != "business" {
		t.Fatalf("updatedStatus = %q", resp.Data.UpdatedStatus)
	}
}

func TestAccountHandler_UpdateSubscription_Invalid(t *testing.T) {
	stub := &stubAccountService{
		subscriptionFn: func(ctx context.Context, accountID string, tier *string) (domain.Subscription, error) {
			return "", domain.ErrInvalidSubscription
		},
	}
	c, _ := jsonContext(newEcho(), http.MethodPatch, "/api/users", `{"subscription":"gold"}`, "acc-1")

	if err := NewAccountHandler(stub).UpdateSubscription(c); !errors.Is(err, domain.ErrInvalidSubscription) {
		t.Fatalf("expected ErrInvalidSubscription, got %v", err)
	}
}

func multipartContext(t *testing.T, field string, content []byte) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if field != "" {
		part, err := w.CreateFormFile(field, "me.png")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write(content)
	} else {
		_ = w.WriteField("note", "no file here")
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPatch, "/api/users/avatars", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := newEcho().NewContext(req, rec)
	c.Set(CtxAccountID, "acc-1")
	return c, rec
}

func TestAccountHandler_UpdateAvatar(t *testing.T) {
	var received []byte
	stub := &stubAccountService{
		avatarFn: func(ctx context.Context, accountID string, upload *ports.AvatarUpload) (string, error) {
			if upload.Filename != "me.png" {
				t.Fatalf("filename = %q", upload.Filename)
			}
			received, _ = io.ReadAll(upload.Content)
			return "/avatars/acc-1-x.png", nil
		},
	}
	c, rec := multipartContext(t, "avatar", []byte("image-bytes"))

	if err := NewAccountHandler(stub).UpdateAvatar(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if string(received) != "image-bytes" {
		t.Fatalf("service received %q", received)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["avatarURL"] != "/avatars/acc-1-x.png" || resp["status"] != "success" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAccountHandler_UpdateAvatar_MissingFile(t *testing.T) {
	stub := &stubAccountService{
		avatarFn: func(ctx context.Context, accountID string, upload *ports.AvatarUpload) (string, error) {
			t.Fatal("service must not be called")
			return "", nil
		},
	}
	h := NewAccountHandler(stub)

	c, _ := multipartContext(t, "", nil)
	if err := h.UpdateAvatar(c); !errors.Is(err, domain.ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile, got %v", err)
	}

	c, _ = multipartContext(t, "picture", []byte("x"))
	if err := h.UpdateAvatar(c); !errors.Is(err, domain.ErrMissingFile) {
		t.Fatalf("wrong field name: expected ErrMissingFile, got %v", err)
	}

	c, _ = jsonContext(newEcho(), http.MethodPatch, "/api/users/avatars", `{}`, "acc-1")
	if err := h.UpdateAvatar(c); !errors.Is(err, domain.ErrMissingFile) {
		t.Fatalf("json body: expected ErrMissingFile, got %v", err)
	}
}
