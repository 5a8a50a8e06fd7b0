package repository

import (
	"context"
	"database/sql"

	"user-admin/internal/domain"
)

type AssignmentRepo struct {
	db dbtx
}

func NewAssignmentRepo(db *sql.DB) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

func (r *AssignmentRepo) WithTx(tx *sql.Tx) domain.AssignmentRepository {
	return &AssignmentRepo{db: tx}
}

func (r *AssignmentRepo) Groups(ctx context.Context) ([]domain.Group, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description FROM auth_groups ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGroups(rows)
}

func (r *AssignmentRepo) Permissions(ctx context.Context) ([]domain.Permission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description FROM auth_permissions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissions(rows)
}

func (r *AssignmentRepo) AddPermissionToUser(ctx context.Context, permissionID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_users_permissions (permission_id, user_id) VALUES (?, ?)`,
		permissionID, userID)
	return mapDBError(err)
}

func (r *AssignmentRepo) AddUserToGroup(ctx context.Context, userID, groupID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_groups_users (group_id, user_id) VALUES (?, ?)`,
		groupID, userID)
	return mapDBError(err)
}

func (r *AssignmentRepo) PermissionsForUser(ctx context.Context, userID int64) ([]domain.Permission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.name, p.description
		   FROM auth_permissions p
		   JOIN auth_users_permissions up ON up.permission_id = p.id
		  WHERE up.user_id = ?
		  ORDER BY p.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissions(rows)
}

func (r *AssignmentRepo) GroupsForUser(ctx context.Context, userID int64) ([]domain.Group, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.description
		   FROM auth_groups g
		   JOIN auth_groups_users gu ON gu.group_id = g.id
		  WHERE gu.user_id = ?
		  ORDER BY g.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGroups(rows)
}

func (r *AssignmentRepo) ClearPermissionsForUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_users_permissions WHERE user_id = ?`, userID)
	return err
}

func (r *AssignmentRepo) ClearGroupsForUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_groups_users WHERE user_id = ?`, userID)
	return err
}

// CreateGroup inserts a role. Used by seeding and the admin CLI; not part
// of the AssignmentRepository port.
func (r *AssignmentRepo) CreateGroup(ctx context.Context, name, description string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_groups (name, description) VALUES (?, ?)`, name, description)
	if err != nil {
		return 0, mapDBError(err)
	}
	return res.LastInsertId()
}

// CreatePermission inserts a permission. Used by seeding and the admin CLI.
func (r *AssignmentRepo) CreatePermission(ctx context.Context, name, description string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_permissions (name, description) VALUES (?, ?)`, name, description)
	if err != nil {
		return 0, mapDBError(err)
	}
	return res.LastInsertId()
}

func scanGroups(rows *sql.Rows) ([]domain.Group, error) {
	var groups []domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func scanPermissions(rows *sql.Rows) ([]domain.Permission, error) {
	var perms []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}
