package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/paulforce18/auth-service/internal/apperr"
	"github.com/paulforce18/auth-service/internal/models"
	"github.com/paulforce18/auth-service/internal/repo"
	"github.com/paulforce18/auth-service/internal/token"
)

const userContextKey = "current_user"

var (
	errUserGone        = apperr.New(http.StatusUnauthorized, "The user belonging to this token no longer exists")
	errPasswordChanged = apperr.New(http.StatusUnauthorized, "User recently changed password, please log in again")
)

type Auth struct {
	Tokens *token.Service
	Repo   *repo.GormRepo
}

func NewAuth(tokens *token.Service, r *repo.GormRepo) *Auth {
	return &Auth{Tokens: tokens, Repo: r}
}

// Protect authenticates the request. A request passes only when the
// bearer token verifies, the user behind it still exists and the token
// was issued after the user's last password change.
func (m *Auth) Protect(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if raw == "" {
			return apperr.ErrNotAuthenticated
		}

		claims, err := m.Tokens.Verify(raw)
		if err != nil {
			return apperr.ErrNotAuthenticated
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return apperr.ErrNotAuthenticated
		}

		user, err := m.Repo.FindByID(c.Request().Context(), userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return errUserGone
			}
			return apperr.Wrap(apperr.ErrInternal, err)
		}

		if user.ChangedPasswordAfter(claims.IssuedAt.Unix()) {
			return errPasswordChanged
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

// RestrictTo admits only the given roles. It must run after Protect.
func RestrictTo(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return apperr.ErrNotAuthenticated
			}
			if !slices.Contains(roles, user.Role) {
				return apperr.ErrForbidden
			}
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userContextKey).(*models.User)
	return user
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
