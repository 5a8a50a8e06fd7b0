package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"user-admin/internal/domain"
	"user-admin/internal/token"
)

// UserService validates and persists user create/update/destroy
// operations, coordinating the user and assignment stores inside a single
// transaction per write.
type UserService struct {
	db          *sql.DB
	users       domain.UserRepository
	assignments domain.AssignmentRepository
	codec       *token.Codec
}

// NewUserService creates a UserService. db must be the write pool; every
// write sequence runs in one transaction on it.
func NewUserService(db *sql.DB, users domain.UserRepository, assignments domain.AssignmentRepository, codec *token.Codec) *UserService {
	return &UserService{db: db, users: users, assignments: assignments, codec: codec}
}

// EditView is the data backing the edit form: the user plus its currently
// assigned permission and group ids.
type EditView struct {
	User          *domain.User
	Token         string
	PermissionIDs []int64
	GroupIDs      []int64
}

// Groups returns all roles a user can be assigned to.
func (s *UserService) Groups(ctx context.Context) ([]domain.Group, error) {
	return s.assignments.Groups(ctx)
}

// Permissions returns all grantable permissions.
func (s *UserService) Permissions(ctx context.Context) ([]domain.Permission, error) {
	return s.assignments.Permissions(ctx)
}

// Create validates the request and, on success, inserts the user and its
// permission and role assignments atomically. Validation failures carry
// field-level messages and perform no writes.
func (s *UserService) Create(ctx context.Context, req domain.CreateUserRequest) error {
	fields := req.Validate()
	if fields["username"] == "" {
		taken, err := s.users.UsernameTaken(ctx, req.Username, 0)
		if err != nil {
			return err
		}
		if taken {
			fields["username"] = "The username is already taken."
		}
	}
	if fields["email"] == "" {
		taken, err := s.users.EmailTaken(ctx, req.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			fields["email"] = "The email is already in use."
		}
	}
	if len(fields) > 0 {
		return domain.ErrFields(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	users := s.users.WithTx(tx)
	assignments := s.assignments.WithTx(tx)

	id, err := users.Insert(ctx, &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Active:       req.Active,
	})
	if err != nil {
		return err
	}
	for _, pid := range req.Permissions {
		if err := assignments.AddPermissionToUser(ctx, pid, id); err != nil {
			return fmt.Errorf("grant permission %d: %w", pid, err)
		}
	}
	for _, gid := range req.Groups {
		if err := assignments.AddUserToGroup(ctx, id, gid); err != nil {
			return fmt.Errorf("add to group %d: %w", gid, err)
		}
	}
	return tx.Commit()
}

// GetForEdit decodes the token and loads the user with its current
// assignment sets for form pre-population.
func (s *UserService) GetForEdit(ctx context.Context, tok string) (*EditView, error) {
	id, err := s.decode(tok)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	perms, err := s.assignments.PermissionsForUser(ctx, id)
	if err != nil {
		return nil, err
	}
	groups, err := s.assignments.GroupsForUser(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &EditView{User: u, Token: tok}
	for _, p := range perms {
		view.PermissionIDs = append(view.PermissionIDs, p.ID)
	}
	for _, g := range groups {
		view.GroupIDs = append(view.GroupIDs, g.ID)
	}
	return view, nil
}

// Update validates the request against the current record (uniqueness is
// only enforced when a value actually changed), then atomically updates
// the user row and replaces both assignment sets with exactly the
// submitted lists.
func (s *UserService) Update(ctx context.Context, tok string, req domain.UpdateUserRequest) error {
	id, err := s.decode(tok)
	if err != nil {
		return err
	}
	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	fields := req.Validate()
	if fields["username"] == "" && req.Username != current.Username {
		taken, err := s.users.UsernameTaken(ctx, req.Username, id)
		if err != nil {
			return err
		}
		if taken {
			fields["username"] = "The username is already taken."
		}
	}
	if fields["email"] == "" && req.Email != current.Email {
		taken, err := s.users.EmailTaken(ctx, req.Email, id)
		if err != nil {
			return err
		}
		if taken {
			fields["email"] = "The email is already in use."
		}
	}
	if len(fields) > 0 {
		return domain.ErrFields(fields)
	}

	hash := current.PasswordHash
	if req.Password != "" {
		newHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		hash = string(newHash)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	users := s.users.WithTx(tx)
	assignments := s.assignments.WithTx(tx)

	if err := users.Update(ctx, &domain.User{
		ID:           id,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Active:       req.Active,
	}); err != nil {
		return err
	}

	// Set membership to exactly the submitted lists: delete-then-reinsert.
	if err := assignments.ClearPermissionsForUser(ctx, id); err != nil {
		return err
	}
	for _, pid := range req.Permissions {
		if err := assignments.AddPermissionToUser(ctx, pid, id); err != nil {
			return fmt.Errorf("grant permission %d: %w", pid, err)
		}
	}
	if err := assignments.ClearGroupsForUser(ctx, id); err != nil {
		return err
	}
	for _, gid := range req.Groups {
		if err := assignments.AddUserToGroup(ctx, id, gid); err != nil {
			return fmt.Errorf("add to group %d: %w", gid, err)
		}
	}
	return tx.Commit()
}

// Destroy hard-deletes the user. Permission grants and group rows are
// removed by the store's foreign-key cascade.
func (s *UserService) Destroy(ctx context.Context, tok string) error {
	id, err := s.decode(tok)
	if err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}

// Authenticate verifies a username/password pair against the store and
// rejects inactive accounts. It returns AccessDenied on any mismatch so
// callers cannot distinguish unknown users from wrong passwords.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return nil, domain.ErrAccessDenied("invalid credentials")
		}
		return nil, err
	}
	if !u.Active {
		return nil, domain.ErrAccessDenied("account is inactive")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrAccessDenied("invalid credentials")
	}
	return u, nil
}

// decode maps token failures to NotFound so URLs with tampered or foreign
// identifiers reveal nothing about which records exist.
func (s *UserService) decode(tok string) (int64, error) {
	id, err := s.codec.Decode(tok)
	if err != nil {
		var invalid *token.InvalidTokenError
		if errors.As(err, &invalid) {
			return 0, domain.ErrNotFound("user not found")
		}
		return 0, err
	}
	return id, nil
}
