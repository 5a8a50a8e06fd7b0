package repository

import (
	"context"
	"database/sql"
	"strings"

	"user-admin/internal/domain"
)

type UserRepo struct {
	db dbtx
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) WithTx(tx *sql.Tx) domain.UserRepository {
	return &UserRepo{db: tx}
}

func (r *UserRepo) Insert(ctx context.Context, u *domain.User) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, active) VALUES (?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, boolToInt(u.Active))
	if err != nil {
		return 0, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, password_hash = ?, active = ? WHERE id = ?`,
		u.Username, u.Email, u.PasswordHash, boolToInt(u.Active), u.ID)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("user %d not found", u.ID)
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("user %d not found", id)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, active, created_at FROM users WHERE id = ?`, id))
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, active, created_at FROM users WHERE username = ?`, username))
}

func (r *UserRepo) scanOne(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var active int64
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &active, &u.CreatedAt); err != nil {
		return nil, mapDBError(err)
	}
	u.Active = active != 0
	return &u, nil
}

func (r *UserRepo) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = ? AND id != ?)`,
		username, excludeID).Scan(&taken)
	return taken, err
}

func (r *UserRepo) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = ? AND id != ?)`,
		email, excludeID).Scan(&taken)
	return taken, err
}

func (r *UserRepo) CountAll(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *UserRepo) CountFiltered(ctx context.Context, q domain.ListingQuery) (int64, error) {
	where, args := filterClause(q)
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *UserRepo) ListPage(ctx context.Context, q domain.ListingQuery) ([]domain.User, error) {
	where, args := filterClause(q)
	start, length := q.Window()
	args = append(args, length, start)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, email, active, created_at FROM users`+where+` ORDER BY id LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var active int64
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &active, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Active = active != 0
		users = append(users, u)
	}
	return users, rows.Err()
}

func filterClause(q domain.ListingQuery) (string, []any) {
	var conds []string
	var args []any
	if q.Name != "" {
		conds = append(conds, `LOWER(username) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(q.Name))
	}
	if q.Email != "" {
		conds = append(conds, `LOWER(email) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(q.Email))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
