package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser(" Sri ", " SRI@Warung.ID ", "rahasia", RoleOwner)
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Sri", u.Name)
	assert.Equal(t, "sri@warung.id", u.Email)
	assert.True(t, u.IsActive())
	assert.True(t, u.IsOwner())
	assert.NotEqual(t, "rahasia", u.PasswordHash)
	assert.True(t, u.CheckPassword("rahasia"))
	assert.False(t, u.CheckPassword("salah"))
}

func TestNewUser_Validation(t *testing.T) {
	_, err := NewUser("", "a@b.c", "rahasia", RoleOwner)
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = NewUser("A", "bukan-email", "rahasia", RoleOwner)
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = NewUser("A", "a@b.c", "123", RoleCashier)
	assert.ErrorIs(t, err, ErrShortPassword)

	_, err = NewUser("A", "a@b.c", "rahasia", Role("admin"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestMarkLogin(t *testing.T) {
	u := &User{}
	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	u.MarkLogin(at)
	require.NotNil(t, u.LastLoginAt)
	assert.Equal(t, at, *u.LastLoginAt)
}
