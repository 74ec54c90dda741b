package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paulforce18/auth-service/internal/apperr"
	"github.com/paulforce18/auth-service/internal/event"
	"github.com/paulforce18/auth-service/internal/hash"
	"github.com/paulforce18/auth-service/internal/logging"
	"github.com/paulforce18/auth-service/internal/mail"
	"github.com/paulforce18/auth-service/internal/models"
	"github.com/paulforce18/auth-service/internal/repo"
	"github.com/paulforce18/auth-service/internal/token"
)

const DefaultResetTTL = 10 * time.Minute

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *token.Service
	Mailer mail.Mailer
	Events *event.Producer

	// ResetTTL is the validity window of an emailed reset token.
	// Zero means DefaultResetTTL; a negative value makes tokens expire
	// immediately.
	ResetTTL time.Duration
}

type SignupInput struct {
	Name            string
	Email           string
	Address         string
	Password        string
	PasswordConfirm string
}

func (s *AuthService) resetTTL() time.Duration {
	if s.ResetTTL != 0 {
		return s.ResetTTL
	}
	return DefaultResetTTL
}

// Signup creates a user from the allow-listed profile fields. The role is
// always "user"; a submitted role never reaches the record.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	if in.Name == "" {
		return nil, "", apperr.Validation("Please provide your name")
	}
	if in.Email == "" {
		return nil, "", apperr.Validation("Please provide your email address")
	}
	if err := validatePasswordPair(in.Password, in.PasswordConfirm); err != nil {
		return nil, "", err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("signup_error", "reason", "cannot hash the password", "error", err)
		return nil, "", apperr.Wrap(apperr.ErrInternal, err)
	}

	user := models.User{
		Name:         in.Name,
		Email:        in.Email,
		Address:      in.Address,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}

	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			l.Warn("signup_conflict", "email", in.Email)
			return nil, "", apperr.ErrEmailTaken
		}
		l.Error("signup_error", "error", err)
		return nil, "", apperr.Wrap(apperr.ErrInternal, err)
	}

	tkn, err := s.Tokens.Issue(user.ID.String())
	if err != nil {
		l.Error("signup_error", "reason", "cannot issue token", "error", err)
		return nil, "", apperr.Wrap(apperr.ErrInternal, err)
	}

	s.publish(ctx, user.ID.String(), map[string]any{
		"type":    event.TypeUserRegistered,
		"user_id": user.ID.String(),
		"email":   user.Email,
	})

	l.Info("signup_successful", "user_id", user.ID.String())
	return &user, tkn, nil
}

// Login verifies email+password. An unknown email and a wrong password
// fail identically so the response leaks nothing about which it was.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if email == "" || password == "" {
		return nil, "", apperr.ErrMissingCredentials
	}

	user, err := s.Repo.FindByEmailWithPassword(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "reason", "unknown email")
			return nil, "", apperr.ErrInvalidCredentials
		}
		l.Error("login_error", "error", err)
		return nil, "", apperr.Wrap(apperr.ErrInternal, err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong password", "user_id", user.ID.String())
		return nil, "", apperr.ErrInvalidCredentials
	}

	tkn, err := s.Tokens.Issue(user.ID.String())
	if err != nil {
		l.Error("login_error", "error", err)
		return nil, "", apperr.Wrap(apperr.ErrInternal, err)
	}

	user.PasswordHash = ""
	l.Info("login_successful", "user_id", user.ID.String())
	return user, tkn, nil
}

// CreateUser is the admin-gated variant of signup: the role may be any
// enumerated role and no session token is issued for the new account.
func (s *AuthService) CreateUser(ctx context.Context, in SignupInput, role string) (*models.User, error) {
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, apperr.Validation(fmt.Sprintf("Unknown role %q", role))
	}
	if in.Name == "" {
		return nil, apperr.Validation("Please provide your name")
	}
	if in.Email == "" {
		return nil, apperr.Validation("Please provide your email address")
	}
	if err := validatePasswordPair(in.Password, in.PasswordConfirm); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, err)
	}

	user := models.User{
		Name:         in.Name,
		Email:        in.Email,
		Address:      in.Address,
		PasswordHash: pwHash,
		Role:         role,
	}

	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, apperr.ErrEmailTaken
		}
		return nil, apperr.Wrap(apperr.ErrInternal, err)
	}

	user.PasswordHash = ""
	return &user, nil
}

// UpdatePassword changes the password of an authenticated user after
// re-verifying the current one, then issues a fresh session token.
func (s *AuthService) UpdatePassword(ctx context.Context, userID uuid.UUID, current, newPassword, newPasswordConfirm string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.update_password", "user_id", userID.String())

	user, err := s.Repo.FindByIDWithPassword(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", apperr.ErrNotAuthenticated
		}
		return "", apperr.Wrap(apperr.ErrInternal, err)
	}

	if !hash.CheckPassword(user.PasswordHash, current) {
		l.Warn("update_password_failed", "reason", "current password mismatch")
		return "", apperr.ErrInvalidCredentials
	}

	if err := validatePasswordPair(newPassword, newPasswordConfirm); err != nil {
		return "", err
	}

	newHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrInternal, err)
	}

	if err := s.Repo.UpdatePassword(ctx, user.ID, newHash, time.Now().UTC()); err != nil {
		l.Error("update_password_error", "error", err)
		return "", apperr.Wrap(apperr.ErrInternal, err)
	}

	tkn, err := s.Tokens.Issue(user.ID.String())
	if err != nil {
		return "", apperr.Wrap(apperr.ErrInternal, err)
	}

	s.publish(ctx, user.ID.String(), map[string]any{
		"type":    event.TypePasswordChanged,
		"user_id": user.ID.String(),
	})

	l.Info("password_updated")
	return tkn, nil
}

func validatePasswordPair(password, confirm string) error {
	if password == "" {
		return apperr.Validation("Please provide a password")
	}
	if len(password) < 8 {
		return apperr.Validation("Password must be at least 8 characters")
	}
	if password != confirm {
		return apperr.Validation("Passwords do not match")
	}
	return nil
}

// publish sends a domain event and never fails the request over it.
func (s *AuthService) publish(ctx context.Context, key string, payload map[string]any) {
	if err := s.Events.Publish(ctx, key, payload); err != nil {
		logging.FromContext(ctx).Error("event_publish_error", "error", err)
	}
}
