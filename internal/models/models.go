package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

type User struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	Name    string    `gorm:"not null"                 json:"name"`
	Email   string    `gorm:"unique;not null"          json:"email"`
	Role    string    `gorm:"not null;default:user"    json:"role"`
	Address string    `json:"address,omitempty"`

	PasswordHash string `gorm:"not null" json:"-"`

	// Unix seconds; zero means the password was never changed after signup.
	PasswordChangedAt int64 `gorm:"not null;default:0" json:"-"`

	// sha256 hex of the outstanding reset token, empty when none.
	PasswordResetToken   string `gorm:"index" json:"-"`
	PasswordResetExpires int64  `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// ChangedPasswordAfter reports whether the password was mutated strictly
// after the given unix timestamp. Tokens issued before that moment must be
// rejected even though their signature is still valid.
func (u *User) ChangedPasswordAfter(issuedAt int64) bool {
	return u.PasswordChangedAt > issuedAt
}
