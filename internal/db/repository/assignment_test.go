package repository

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "user-admin/internal/db"
	"user-admin/internal/domain"
)

func setupAssignmentRepo(t *testing.T) (*AssignmentRepo, *UserRepo) {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return NewAssignmentRepo(writeDB), NewUserRepo(writeDB)
}

func TestAssignmentRepo_Catalog(t *testing.T) {
	repo, _ := setupAssignmentRepo(t)
	ctx := context.Background()

	gid, err := repo.CreateGroup(ctx, "admin", "Administrators")
	require.NoError(t, err)
	_, err = repo.CreateGroup(ctx, "staff", "Back-office staff")
	require.NoError(t, err)
	pid, err := repo.CreatePermission(ctx, "manage-users", "Create, edit, and delete users")
	require.NoError(t, err)

	groups, err := repo.Groups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "admin", groups[0].Name)
	assert.Equal(t, gid, groups[0].ID)

	perms, err := repo.Permissions(ctx)
	require.NoError(t, err)
	require.Len(t, perms, 1)
	assert.Equal(t, pid, perms[0].ID)
}

func TestAssignmentRepo_GrantsAndClear(t *testing.T) {
	repo, users := setupAssignmentRepo(t)
	ctx := context.Background()

	uid := insertUser(t, users, "alice", "alice@example.com")
	gid, err := repo.CreateGroup(ctx, "admin", "")
	require.NoError(t, err)
	p1, err := repo.CreatePermission(ctx, "manage-users", "")
	require.NoError(t, err)
	p2, err := repo.CreatePermission(ctx, "view-reports", "")
	require.NoError(t, err)

	require.NoError(t, repo.AddUserToGroup(ctx, uid, gid))
	require.NoError(t, repo.AddPermissionToUser(ctx, p1, uid))
	require.NoError(t, repo.AddPermissionToUser(ctx, p2, uid))

	groups, err := repo.GroupsForUser(ctx, uid)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "admin", groups[0].Name)

	perms, err := repo.PermissionsForUser(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, perms, 2)

	require.NoError(t, repo.ClearPermissionsForUser(ctx, uid))
	perms, err = repo.PermissionsForUser(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, perms)

	require.NoError(t, repo.ClearGroupsForUser(ctx, uid))
	groups, err = repo.GroupsForUser(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestAssignmentRepo_ForeignKeysEnforced(t *testing.T) {
	repo, users := setupAssignmentRepo(t)
	ctx := context.Background()

	uid := insertUser(t, users, "alice", "alice@example.com")

	// Granting a nonexistent permission must fail.
	err := repo.AddPermissionToUser(ctx, 999, uid)
	require.Error(t, err)

	// Adding a nonexistent user to a real group must fail.
	gid, err := repo.CreateGroup(ctx, "admin", "")
	require.NoError(t, err)
	err = repo.AddUserToGroup(ctx, 999, gid)
	require.Error(t, err)
}

func TestAssignmentRepo_CascadeOnUserDelete(t *testing.T) {
	repo, users := setupAssignmentRepo(t)
	ctx := context.Background()

	uid := insertUser(t, users, "alice", "alice@example.com")
	gid, err := repo.CreateGroup(ctx, "admin", "")
	require.NoError(t, err)
	pid, err := repo.CreatePermission(ctx, "manage-users", "")
	require.NoError(t, err)
	require.NoError(t, repo.AddUserToGroup(ctx, uid, gid))
	require.NoError(t, repo.AddPermissionToUser(ctx, pid, uid))

	require.NoError(t, users.Delete(ctx, uid))

	groups, err := repo.GroupsForUser(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, groups, "group rows should cascade away with the user")

	perms, err := repo.PermissionsForUser(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, perms, "permission grants should cascade away with the user")
}

var _ domain.AssignmentRepository = (*AssignmentRepo)(nil)
var _ domain.UserRepository = (*UserRepo)(nil)
