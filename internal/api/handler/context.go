package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Context keys populated by the Auth middleware.
const (
	CtxAccountID = "account_id"
	CtxEmail     = "email"
)

// accountID returns the id injected by the Auth middleware. Its absence means
// the route was mounted without the gate.
func accountID(c echo.Context) (string, error) {
	id, _ := c.Get(CtxAccountID).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "not authorized")
	}
	return id, nil
}
