package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paulforce18/auth-service/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	var existing models.User
	err := r.DB.WithContext(ctx).Where("email = ?", u.Email).First(&existing).Error
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// FindByEmail returns the user without exposing credential columns to the
// caller's intent; the hash is still on the struct but callers that need
// it for verification must use FindByEmailWithPassword.
func (r *GormRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Omit("password_hash").
		Where("email = ?", email).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Omit("password_hash").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByIDWithPassword is the credential-check variant of FindByID.
func (r *GormRepo) FindByIDWithPassword(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetResetToken stores the hash and expiry of a pending reset token,
// overwriting any earlier one. Partial update, other columns untouched.
func (r *GormRepo) SetResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt int64) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"password_reset_token":   tokenHash,
			"password_reset_expires": expiresAt,
		}).Error
}

func (r *GormRepo) ClearResetToken(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"password_reset_token":   "",
			"password_reset_expires": 0,
		}).Error
}

// FindByResetToken matches the stored token hash and requires the expiry
// to still be in the future.
func (r *GormRepo) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Where("password_reset_token = ? AND password_reset_expires > ?", tokenHash, now.Unix()).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdatePassword writes the new hash, stamps password_changed_at and
// clears any pending reset token in one statement.
func (r *GormRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, newHash string, changedAt time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"password_hash":          newHash,
			"password_changed_at":    changedAt.Unix(),
			"password_reset_token":   "",
			"password_reset_expires": 0,
		}).Error
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).
		Omit("password_hash").
		Order("created_at").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
