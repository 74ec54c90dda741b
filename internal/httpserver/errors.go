package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/paulforce18/auth-service/internal/apperr"
	"github.com/paulforce18/auth-service/internal/logging"
)

// HTTPErrorHandler is the single translation point from typed errors to
// the response envelope. Internal causes are logged, never serialized.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := apperr.ErrInternal.Message

	var appErr *apperr.Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message
	case errors.As(err, &httpErr):
		code = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	}

	l := logging.FromContext(c.Request().Context())
	if code >= 500 {
		l.Error("request error", "status", code, "error", err)
	} else {
		l.Warn("request error", "status", code, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{
		"status":  "error",
		"message": message,
	})
}
