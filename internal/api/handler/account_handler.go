package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

const avatarField = "avatar"

type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// subscriptionRequest keeps the raw value so an absent field can be told apart
// from an invalid one.
type subscriptionRequest struct {
	Subscription json.RawMessage `json:"subscription" swaggertype:"string" enums:"starter,pro,business"`
}

func (r subscriptionRequest) tier() *string {
	if len(r.Subscription) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(r.Subscription, &s); err != nil {
		s = string(r.Subscription)
	}
	return &s
}

// Current returns the authenticated account.
//
// @Summary      Current account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  currentResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/current [get]
func (h *AccountHandler) Current(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}

	account, err := h.service.Current(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, currentResponse{
		Status: statusSuccess,
		Code:   http.StatusOK,
		Data: currentData{
			Email:        account.Email,
			Subscription: string(account.Subscription),
		},
	})
}

// UpdateSubscription changes the subscription tier.
//
// @Summary      Update subscription
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      subscriptionRequest  true  "New tier"
// @Success      200   {object}  subscriptionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /users [patch]
func (h *AccountHandler) UpdateSubscription(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}

	var req subscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	tier, err := h.service.UpdateSubscription(c.Request().Context(), id, req.tier())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, subscriptionResponse{
		Status: statusSuccess,
		Code:   http.StatusOK,
		Data:   subscriptionData{UpdatedStatus: string(tier)},
	})
}

// UpdateAvatar replaces the avatar image.
//
// @Summary      Upload avatar
// @Tags         users
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Image (jpeg, png or gif)"
// @Success      200     {object}  avatarResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /users/avatars [patch]
func (h *AccountHandler) UpdateAvatar(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile(avatarField)
	if err != nil {
		return domain.ErrMissingFile
	}
	f, err := fh.Open()
	if err != nil {
		return domain.ErrMissingFile
	}
	defer f.Close()

	url, err := h.service.UpdateAvatar(c.Request().Context(), id, &ports.AvatarUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Content:     f,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, avatarResponse{
		Status:    statusSuccess,
		Code:      http.StatusOK,
		AvatarURL: url,
	})
}
