package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paulforce18/auth-service/internal/apperr"
	"github.com/paulforce18/auth-service/internal/event"
	"github.com/paulforce18/auth-service/internal/hash"
	"github.com/paulforce18/auth-service/internal/logging"
	"github.com/paulforce18/auth-service/internal/mail"
	"github.com/paulforce18/auth-service/internal/repo"
	"github.com/paulforce18/auth-service/internal/token"
)

// ForgotPassword starts the reset flow. An unknown email returns nil so
// the handler answers the same way whether or not the account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email, baseURL string) error {
	l := logging.FromContext(ctx).With("svc", "auth.forgot_password")

	if email == "" {
		return apperr.Validation("Please provide your email address")
	}

	user, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Info("forgot_password_unknown_email")
			return nil
		}
		return apperr.Wrap(apperr.ErrInternal, err)
	}

	plain, tokenHash, err := token.NewResetToken()
	if err != nil {
		l.Error("forgot_password_error", "reason", "cannot generate token", "error", err)
		return apperr.Wrap(apperr.ErrInternal, err)
	}

	expiresAt := time.Now().UTC().Add(s.resetTTL()).Unix()
	if err := s.Repo.SetResetToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		l.Error("forgot_password_error", "error", err)
		return apperr.Wrap(apperr.ErrInternal, err)
	}

	resetURL := fmt.Sprintf("%s/api/v1/users/resetPassword/%s", baseURL, plain)
	if err := s.Mailer.Send(ctx, user.Email, mail.ResetSubject, mail.ResetBody(resetURL)); err != nil {
		// The stored token must not outlive a failed dispatch.
		if clearErr := s.Repo.ClearResetToken(ctx, user.ID); clearErr != nil {
			l.Error("forgot_password_cleanup_error", "error", clearErr)
		}
		l.Error("forgot_password_email_error", "error", err)
		return apperr.Wrap(apperr.ErrEmailDispatch, err)
	}

	l.Info("reset_token_sent", "user_id", user.ID.String())
	return nil
}

// ResetPassword completes the reset flow: exchange a valid plaintext
// token for a new password and a fresh session token.
func (s *AuthService) ResetPassword(ctx context.Context, plainToken, password, passwordConfirm string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.reset_password")

	user, err := s.Repo.FindByResetToken(ctx, token.HashResetToken(plainToken), time.Now().UTC())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("reset_password_failed", "reason", "invalid or expired token")
			return "", apperr.ErrInvalidResetToken
		}
		return "", apperr.Wrap(apperr.ErrInternal, err)
	}

	if err := validatePasswordPair(password, passwordConfirm); err != nil {
		return "", err
	}

	newHash, err := hash.HashPassword(password)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrInternal, err)
	}

	// Also clears the reset columns, making the token single-use.
	if err := s.Repo.UpdatePassword(ctx, user.ID, newHash, time.Now().UTC()); err != nil {
		l.Error("reset_password_error", "error", err)
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

	l.Info("password_reset_successful", "user_id", user.ID.String())
	return tkn, nil
}
