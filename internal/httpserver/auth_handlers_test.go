package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/paulforce18/auth-service/internal/middleware"
	"github.com/paulforce18/auth-service/internal/models"
	"github.com/paulforce18/auth-service/internal/repo"
	"github.com/paulforce18/auth-service/internal/service"
	"github.com/paulforce18/auth-service/internal/token"
)

type recordingMailer struct {
	bodies []string
}

func (m *recordingMailer) Send(_ context.Context, _, _, body string) error {
	m.bodies = append(m.bodies, body)
	return nil
}

type serverEnv struct {
	e      *echo.Echo
	db     *gorm.DB
	mailer *recordingMailer
	tokens *token.Service
}

func newServerEnv(t *testing.T) *serverEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	tokens := &token.Service{Secret: []byte("test-jwt-secret"), TTL: 15 * time.Minute}
	mailer := &recordingMailer{}
	userRepo := &repo.GormRepo{DB: db}

	e := echo.New()
	Register(e, &Deps{
		AuthHandler: &AuthHTTP{
			Svc: &service.AuthService{
				Repo:   userRepo,
				Tokens: tokens,
				Mailer: mailer,
			},
			BaseURL: "http://localhost:8080",
		},
		AuthMw: middleware.NewAuth(tokens, userRepo),
	})

	return &serverEnv{e: e, db: db, mailer: mailer, tokens: tokens}
}

func (s *serverEnv) request(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func signupPayload() map[string]string {
	return map[string]string{
		"name":            "A",
		"email":           "a@x.com",
		"password":        "secret123",
		"passwordConfirm": "secret123",
	}
}

func TestSignup_CreatedWithTokenAndSanitizedUser(t *testing.T) {
	env := newServerEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/users/signup", "", signupPayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	require.NotEmpty(t, body["token"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	user, ok := data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, rec.Body.String(), "secret123")

	claims, err := env.tokens.Verify(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, user["id"], claims.Subject)
}

func TestSignup_SubmittedRoleIsIgnored(t *testing.T) {
	env := newServerEnv(t)

	payload := signupPayload()
	payload["role"] = "admin"

	rec := env.request(t, http.MethodPost, "/api/v1/users/signup", "", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, env.db.Where("email = ?", "a@x.com").First(&user).Error)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestLogin_UnknownEmail(t *testing.T) {
	env := newServerEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email":    "unregistered@x.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Incorrect password or email", body["message"])
}

func TestLogin_MissingCredentials(t *testing.T) {
	env := newServerEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email": "a@x.com",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "error", body["status"])
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	env := newServerEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/users", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "error", body["status"])
}

func TestListUsers_WithValidToken(t *testing.T) {
	env := newServerEnv(t)

	signupRec := env.request(t, http.MethodPost, "/api/v1/users/signup", "", signupPayload())
	require.Equal(t, http.StatusCreated, signupRec.Code)
	tkn := decodeBody(t, signupRec)["token"].(string)

	rec := env.request(t, http.MethodGet, "/api/v1/users", tkn, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(1), body["results"])
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

func TestCreateUser_AdminOnly(t *testing.T) {
	env := newServerEnv(t)

	signupRec := env.request(t, http.MethodPost, "/api/v1/users/signup", "", signupPayload())
	require.Equal(t, http.StatusCreated, signupRec.Code)
	userTkn := decodeBody(t, signupRec)["token"].(string)

	newUser := map[string]string{
		"name":            "B",
		"email":           "b@x.com",
		"password":        "secret123",
		"passwordConfirm": "secret123",
		"role":            "admin",
	}

	rec := env.request(t, http.MethodPost, "/api/v1/users", userTkn, newUser)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "error", decodeBody(t, rec)["status"])

	// Promote the caller and retry.
	require.NoError(t, env.db.Model(&models.User{}).
		Where("email = ?", "a@x.com").
		Update("role", models.RoleAdmin).Error)

	rec = env.request(t, http.MethodPost, "/api/v1/users", userTkn, newUser)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	created := data["user"].(map[string]any)
	assert.Equal(t, "b@x.com", created["email"])
	assert.Equal(t, "admin", created["role"])
}

func TestForgotPassword_GenericResponse(t *testing.T) {
	env := newServerEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/users/signup", "", signupPayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	known := env.request(t, http.MethodPost, "/api/v1/users/forgotPassword", "", map[string]string{"email": "a@x.com"})
	unknown := env.request(t, http.MethodPost, "/api/v1/users/forgotPassword", "", map[string]string{"email": "nobody@x.com"})

	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
	assert.Equal(t, "Token sent to email!", decodeBody(t, known)["message"])
	assert.Len(t, env.mailer.bodies, 1)
}

func TestResetPassword_EndToEnd(t *testing.T) {
	env := newServerEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/users/signup", "", signupPayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/users/forgotPassword", "", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.mailer.bodies, 1)

	const marker = "/resetPassword/"
	mailBody := env.mailer.bodies[0]
	idx := strings.Index(mailBody, marker)
	require.GreaterOrEqual(t, idx, 0)
	plain := mailBody[idx+len(marker):]
	plain = plain[:strings.IndexAny(plain, ". \n")]

	rec = env.request(t, http.MethodPatch, "/api/v1/users/resetPassword/"+plain, "", map[string]string{
		"password":        "brandnew123",
		"passwordConfirm": "brandnew123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.NotEmpty(t, body["token"])

	loginRec := env.request(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "brandnew123",
	})
	require.Equal(t, http.StatusOK, loginRec.Code)

	// Reusing the consumed token fails.
	rec = env.request(t, http.MethodPatch, "/api/v1/users/resetPassword/"+plain, "", map[string]string{
		"password":        "another12345",
		"passwordConfirm": "another12345",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Token is invalid or has expired", decodeBody(t, rec)["message"])
}

func TestUpdateMyPassword(t *testing.T) {
	env := newServerEnv(t)

	signupRec := env.request(t, http.MethodPost, "/api/v1/users/signup", "", signupPayload())
	require.Equal(t, http.StatusCreated, signupRec.Code)
	tkn := decodeBody(t, signupRec)["token"].(string)

	rec := env.request(t, http.MethodPatch, "/api/v1/users/updateMyPassword", tkn, map[string]string{
		"currentPassword": "wrong-password",
		"password":        "brandnew123",
		"passwordConfirm": "brandnew123",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodPatch, "/api/v1/users/updateMyPassword", tkn, map[string]string{
		"currentPassword": "secret123",
		"password":        "brandnew123",
		"passwordConfirm": "brandnew123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	newTkn, _ := body["token"].(string)
	require.NotEmpty(t, newTkn)

	loginRec := env.request(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "brandnew123",
	})
	require.Equal(t, http.StatusOK, loginRec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/users", newTkn, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
