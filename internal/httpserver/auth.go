package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/paulforce18/auth-service/internal/apperr"
	"github.com/paulforce18/auth-service/internal/middleware"
	"github.com/paulforce18/auth-service/internal/service"
)

type AuthHTTP struct {
	Svc *service.AuthService

	// BaseURL is the public origin embedded in reset links.
	BaseURL string
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func (r signupRequest) toInput() service.SignupInput {
	return service.SignupInput{
		Name:            r.Name,
		Email:           r.Email,
		Address:         r.Address,
		Password:        r.Password,
		PasswordConfirm: r.PasswordConfirm,
	}
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	user, tkn, err := h.Svc.Signup(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}

	return respondToken(c, http.StatusCreated, tkn, echo.Map{"user": user})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	user, tkn, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return respondToken(c, http.StatusOK, tkn, echo.Map{"user": user})
}

func (h *AuthHTTP) ForgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	if err := h.Svc.ForgotPassword(c.Request().Context(), req.Email, h.BaseURL); err != nil {
		return err
	}

	// Same answer whether or not the email is registered.
	return respondMessage(c, http.StatusOK, "Token sent to email!")
}

func (h *AuthHTTP) ResetPassword(c echo.Context) error {
	var req struct {
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	tkn, err := h.Svc.ResetPassword(c.Request().Context(), c.Param("token"), req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}

	return respondToken(c, http.StatusOK, tkn, nil)
}

func (h *AuthHTTP) UpdateMyPassword(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return apperr.ErrNotAuthenticated
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	tkn, err := h.Svc.UpdatePassword(c.Request().Context(), user.ID, req.CurrentPassword, req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}

	return respondToken(c, http.StatusOK, tkn, nil)
}
