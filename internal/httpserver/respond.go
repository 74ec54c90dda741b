package httpserver

import "github.com/labstack/echo/v4"

// Response envelope shared by every endpoint:
// {status: "success"|"error", token?, data?, message?}.

func respondData(c echo.Context, code int, data echo.Map) error {
	return c.JSON(code, echo.Map{
		"status": "success",
		"data":   data,
	})
}

func respondToken(c echo.Context, code int, token string, data echo.Map) error {
	body := echo.Map{
		"status": "success",
		"token":  token,
	}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(code, body)
}

func respondMessage(c echo.Context, code int, message string) error {
	return c.JSON(code, echo.Map{
		"status":  "success",
		"message": message,
	})
}
