package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/paulforce18/auth-service/internal/middleware"
	"github.com/paulforce18/auth-service/internal/models"
)

type Deps struct {
	AuthHandler *AuthHTTP
	AuthMw      *middleware.Auth
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = HTTPErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	users := e.Group("/api/v1/users")

	users.POST("/signup", d.AuthHandler.Signup)
	users.POST("/login", d.AuthHandler.Login)
	users.POST("/forgotPassword", d.AuthHandler.ForgotPassword)
	users.PATCH("/resetPassword/:token", d.AuthHandler.ResetPassword)

	users.PATCH("/updateMyPassword", d.AuthHandler.UpdateMyPassword, d.AuthMw.Protect)

	users.GET("", d.AuthHandler.ListUsers, d.AuthMw.Protect)
	users.POST("", d.AuthHandler.CreateUser, d.AuthMw.Protect, middleware.RestrictTo(models.RoleAdmin))
}
