// Package repository implements domain repository interfaces using SQLite.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"user-admin/internal/domain"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx, so repositories can be
// rebound to a transaction via WithTx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Message: "resource not found"}
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		switch {
		case strings.Contains(msg, "users.username"):
			return &domain.ConflictError{Message: "The username is already taken."}
		case strings.Contains(msg, "users.email"):
			return &domain.ConflictError{Message: "The email is already in use."}
		}
		return &domain.ConflictError{Message: "resource already exists"}
	}
	return err
}

// likePattern turns a raw substring filter into a LIKE pattern, escaping
// the LIKE metacharacters so user input matches literally.
func likePattern(s string) string {
	s = strings.ToLower(s)
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
