package domain

import (
	"context"
	"database/sql"
)

// UserRepository provides CRUD operations for users. WithTx returns a
// copy bound to the given transaction so multi-table write sequences can
// be composed atomically by the service layer.
type UserRepository interface {
	WithTx(tx *sql.Tx) UserRepository
	Insert(ctx context.Context, u *User) (int64, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	CountAll(ctx context.Context) (int64, error)
	CountFiltered(ctx context.Context, q ListingQuery) (int64, error)
	ListPage(ctx context.Context, q ListingQuery) ([]User, error)
}

// AssignmentRepository persists group membership and permission grants.
// The mutating methods mirror the authorization surface the panel was
// built against: AddPermissionToUser, AddUserToGroup, and the per-user
// lookups backing the edit form.
type AssignmentRepository interface {
	WithTx(tx *sql.Tx) AssignmentRepository
	Groups(ctx context.Context) ([]Group, error)
	Permissions(ctx context.Context) ([]Permission, error)
	AddPermissionToUser(ctx context.Context, permissionID, userID int64) error
	AddUserToGroup(ctx context.Context, userID, groupID int64) error
	PermissionsForUser(ctx context.Context, userID int64) ([]Permission, error)
	GroupsForUser(ctx context.Context, userID int64) ([]Group, error)
	ClearPermissionsForUser(ctx context.Context, userID int64) error
	ClearGroupsForUser(ctx context.Context, userID int64) error
}
