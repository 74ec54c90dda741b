package repo

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/paulforce18/auth-service/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	return &GormRepo{DB: db}
}

func (r *GormRepo) createTestUser(t *testing.T) *models.User {
	t.Helper()

	user := models.User{
		Name:         "Test User",
		Email:        "a@x.com",
		PasswordHash: "$2a$10$not-a-real-hash",
	}
	require.NoError(t, r.DB.Create(&user).Error)
	return &user
}

func TestGormRepo_DefaultReadsOmitPasswordHash(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	created := r.createTestUser(t)

	byID, err := r.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, byID.PasswordHash)

	byEmail, err := r.FindByEmail(ctx, created.Email)
	require.NoError(t, err)
	assert.Empty(t, byEmail.PasswordHash)

	users, err := r.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash)
}

func TestGormRepo_CredentialVariantsLoadPasswordHash(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	created := r.createTestUser(t)

	byID, err := r.FindByIDWithPassword(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.PasswordHash, byID.PasswordHash)

	byEmail, err := r.FindByEmailWithPassword(ctx, created.Email)
	require.NoError(t, err)
	assert.Equal(t, created.PasswordHash, byEmail.PasswordHash)
}
