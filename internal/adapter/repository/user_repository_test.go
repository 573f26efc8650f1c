package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/hugohenrick/warung-digital/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewMemoryStore())

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	u, err := user.NewUser("Sri", "sri@warung.id", "rahasia", user.RoleOwner)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, u))

	dup, err := user.NewUser("Sri 2", "SRI@warung.id", "rahasia", user.RoleCashier)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrUserDuplicateEmail)

	found, err := repo.FindByEmail(ctx, " Sri@Warung.id")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.True(t, found.CheckPassword("rahasia"), "hash persiste no armazenamento")

	_, err = repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, repo.UpdateLastLogin(ctx, u.ID))
	found, err = repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, found.LastLoginAt)

	assert.ErrorIs(t, repo.UpdateLastLogin(ctx, "nope"), ErrUserNotFound)

	all, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateFirst_OnlyOneOwnerUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewMemoryStore())

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		u, err := user.NewUser("Dono", fmt.Sprintf("dono%d@warung.id", i), "rahasia", user.RoleOwner)
		require.NoError(t, err)
		wg.Add(1)
		go func(i int, u *user.User) {
			defer wg.Done()
			errs[i] = repo.CreateFirst(ctx, u)
		}(i, u)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ErrUsersExist)
	}
	assert.Equal(t, 1, created)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
