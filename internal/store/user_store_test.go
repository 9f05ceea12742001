package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStoreAuthenticate(t *testing.T) {
	users := NewUserStore(openTestDB(t))
	ctx := context.Background()

	created, err := users.Create(ctx, "users", "ana@example.com", "s3cret-pass")
	require.NoError(t, err)

	u, err := users.Authenticate(ctx, "users", "ANA@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = users.Authenticate(ctx, "users", "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.Authenticate(ctx, "users", "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.Authenticate(ctx, "admins", "ana@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserStoreSessions(t *testing.T) {
	users := NewUserStore(openTestDB(t))
	ctx := context.Background()

	u, err := users.Create(ctx, "users", "ivan@example.com", "pw")
	require.NoError(t, err)

	token, err := users.CreateSession(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	got, err := users.UserForToken(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ivan@example.com", got.Email)

	none, err := users.UserForToken(ctx, "bogus")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestUserStoreFindByEmail(t *testing.T) {
	users := NewUserStore(openTestDB(t))
	ctx := context.Background()

	_, err := users.Create(ctx, "users", "ana@example.com", "pw")
	require.NoError(t, err)

	u, err := users.FindByEmail(ctx, "users", "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "ana@example.com", u.Email)

	none, err := users.FindByEmail(ctx, "users", "ivan@example.com")
	require.NoError(t, err)
	assert.Nil(t, none)
}
