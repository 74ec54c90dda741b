package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/paulforce18/auth-service/internal/apperr"
)

func (h *AuthHTTP) ListUsers(c echo.Context) error {
	users, err := h.Svc.Repo.ListUsers(c.Request().Context())
	if err != nil {
		return apperr.Wrap(apperr.ErrInternal, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"results": len(users),
		"data":    echo.Map{"users": users},
	})
}

func (h *AuthHTTP) CreateUser(c echo.Context) error {
	var req struct {
		signupRequest
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	user, err := h.Svc.CreateUser(c.Request().Context(), req.toInput(), req.Role)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusCreated, echo.Map{"user": user})
}
