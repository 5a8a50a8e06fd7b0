package repository

import (
	"context"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "user-admin/internal/db"
	"user-admin/internal/domain"
)

func setupUserRepo(t *testing.T) *UserRepo {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return NewUserRepo(writeDB)
}

func insertUser(t *testing.T, repo *UserRepo, username, email string) int64 {
	t.Helper()
	id, err := repo.Insert(context.Background(), &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		Active:       true,
	})
	require.NoError(t, err)
	return id
}

func TestUserRepo_CRUD(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	id := insertUser(t, repo, "alice", "alice@example.com")
	assert.Greater(t, id, int64(0))

	u, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.True(t, u.Active)
	assert.False(t, u.CreatedAt.IsZero())

	u.Email = "alice@corp.example.com"
	u.Active = false
	require.NoError(t, repo.Update(ctx, u))

	u, err = repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@corp.example.com", u.Email)
	assert.False(t, u.Active)

	require.NoError(t, repo.Delete(ctx, id))

	_, err = repo.GetByID(ctx, id)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestUserRepo_UniqueConstraints(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	insertUser(t, repo, "alice", "alice@example.com")

	_, err := repo.Insert(ctx, &domain.User{
		Username: "alice", Email: "other@example.com", PasswordHash: "x", Active: true,
	})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Message, "username")

	_, err = repo.Insert(ctx, &domain.User{
		Username: "bob", Email: "alice@example.com", PasswordHash: "x", Active: true,
	})
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Message, "email")
}

func TestUserRepo_TakenChecks(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	id := insertUser(t, repo, "alice", "alice@example.com")

	taken, err := repo.UsernameTaken(ctx, "alice", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	// The user's own row does not count against itself.
	taken, err = repo.UsernameTaken(ctx, "alice", id)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.EmailTaken(ctx, "alice@example.com", id)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.EmailTaken(ctx, "nobody@example.com", 0)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUserRepo_DeleteMissing(t *testing.T) {
	repo := setupUserRepo(t)

	err := repo.Delete(context.Background(), 12345)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestUserRepo_CountsAndPaging(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		insertUser(t, repo, fmt.Sprintf("user%02d", i), fmt.Sprintf("user%02d@example.com", i))
	}
	insertUser(t, repo, "ALICE Smith", "asmith@corp.example.com")

	total, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), total)

	// Case-insensitive substring match on username.
	filtered, err := repo.CountFiltered(ctx, domain.ListingQuery{Name: "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), filtered)

	// AND-combined name and email filters.
	filtered, err = repo.CountFiltered(ctx, domain.ListingQuery{Name: "user", Email: "corp"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), filtered)

	page, err := repo.ListPage(ctx, domain.ListingQuery{Start: 2, Length: 3})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, "user02", page[0].Username)

	// LIKE metacharacters in the filter match literally.
	filtered, err = repo.CountFiltered(ctx, domain.ListingQuery{Name: "%"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), filtered)
}
