package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/internal/domain"
	"vidtube/internal/repository"
)

func newTestRepo(t *testing.T) repository.UserRepository {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewUserRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func testUser(username, email string) *domain.User {
	return &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		FullName:     "Jane Doe",
		PasswordHash: "$2a$10$fakefakefakefakefakefak",
		AvatarURL:    "https://cdn.example.com/avatars/a.png",
	}
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := testUser("janedoe", "jane@x.com")
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "janedoe", got.Username)
	assert.Equal(t, "jane@x.com", got.Email)
	assert.Equal(t, "Jane Doe", got.FullName)
	assert.Empty(t, got.RefreshToken)
	assert.False(t, got.CreatedAt.IsZero())

	byName, err := repo.GetByUsernameOrEmail(ctx, "janedoe", "janedoe")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.GetByUsernameOrEmail(ctx, "jane@x.com", "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestGetMissingUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetByUsernameOrEmail(ctx, "nobody", "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testUser("janedoe", "jane@x.com")))

	err := repo.Create(ctx, testUser("janedoe", "other@x.com"))
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = repo.Create(ctx, testUser("otheruser", "jane@x.com"))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSetAndClearRefreshToken(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := testUser("janedoe", "jane@x.com")
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, "token-1"))
	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "token-1", got.RefreshToken)

	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, ""))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, got.RefreshToken)

	err = repo.SetRefreshToken(ctx, uuid.NewString(), "token-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRotateRefreshToken(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := testUser("janedoe", "jane@x.com")
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, "token-1"))

	require.NoError(t, repo.RotateRefreshToken(ctx, user.ID, "token-1", "token-2"))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "token-2", got.RefreshToken)

	// rotated-out token loses the swap
	err = repo.RotateRefreshToken(ctx, user.ID, "token-1", "token-3")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "token-2", got.RefreshToken)
}

func TestRotateRefreshTokenConcurrent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := testUser("janedoe", "jane@x.com")
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, "token-1"))

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.RotateRefreshToken(ctx, user.ID, "token-1", fmt.Sprintf("next-%d", i))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		}
	}
	assert.Equal(t, 1, wins, "exactly one rotation may win")

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Contains(t, got.RefreshToken, "next-")
}
