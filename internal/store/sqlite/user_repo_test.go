package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conrelay/internal/domain"
)

func openTestDB(t *testing.T) *UserRepo {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(db))
	return NewUserRepo(db)
}

func TestUserRepoCreateAndGet(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	u := &domain.User{Username: "alice", HashedPassword: "hashed"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hashed", got.HashedPassword)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestUserRepoGetMissing(t *testing.T) {
	repo := openTestDB(t)

	got, err := repo.GetByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepoUniqueUsername(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{Username: "alice", HashedPassword: "x"}))
	err := repo.Create(ctx, &domain.User{Username: "alice", HashedPassword: "y"})
	assert.Error(t, err)
}

func TestUserRepoTouchLastSeen(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	u := &domain.User{Username: "alice", HashedPassword: "x"}
	require.NoError(t, repo.Create(ctx, u))
	require.NoError(t, repo.TouchLastSeen(ctx, u.ID))

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, got.LastSeen.Before(got.CreatedAt))
}
