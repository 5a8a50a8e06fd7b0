// Package main is the adminctl binary: migrations, seeding, and user
// creation from the command line.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"user-admin/internal/config"
	internaldb "user-admin/internal/db"
	"user-admin/internal/db/repository"
	"user-admin/internal/domain"
	"user-admin/internal/service"
	"user-admin/internal/token"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbPath string

	rootCmd := &cobra.Command{
		Use:           "adminctl",
		Short:         "User admin maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite database (defaults to DB_PATH)")

	rootCmd.AddCommand(newMigrateCmd(&dbPath))
	rootCmd.AddCommand(newSeedCmd(&dbPath))
	rootCmd.AddCommand(newCreateUserCmd(&dbPath))
	return rootCmd
}

func openDB(dbPath string) (*sql.DB, *config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, err
	}
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	writeDB, err := internaldb.OpenSQLite(dbPath, "write", 0)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return writeDB, cfg, nil
}

func newMigrateCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, err := openDB(*dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := internaldb.RunMigrations(db); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func newSeedCmd(dbPath *string) *cobra.Command {
	var adminPassword string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed default roles, permissions, and an admin account",
		Long: "Seed creates the admin and user roles, the manage-users and " +
			"view-users permissions, and an active admin account when one does " +
			"not exist yet. Running it again is a no-op.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, cfg, err := openDB(*dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := internaldb.RunMigrations(db); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			if adminPassword == "" {
				return errors.New("--admin-password is required")
			}
			return seed(cmd.Context(), db, cfg, adminPassword)
		},
	}
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "password for the seeded admin account")
	return cmd
}

func seed(ctx context.Context, db *sql.DB, cfg *config.Config, adminPassword string) error {
	assignRepo := repository.NewAssignmentRepo(db)
	userRepo := repository.NewUserRepo(db)

	groupIDs, err := ensureGroups(ctx, assignRepo, map[string]string{
		"admin": "Administrators with full access",
		"user":  "Regular accounts",
	})
	if err != nil {
		return err
	}
	permIDs, err := ensurePermissions(ctx, assignRepo, map[string]string{
		"manage-users": "Create, edit, and delete user accounts",
		"view-users":   "Browse the user list",
	})
	if err != nil {
		return err
	}

	if _, err := userRepo.GetByUsername(ctx, "admin"); err == nil {
		fmt.Println("admin account already exists, nothing to do")
		return nil
	} else {
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	codec, err := token.NewCodec(cfg.TokenKey)
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}
	users := service.NewUserService(db, userRepo, assignRepo, codec)
	if err := users.Create(ctx, domain.CreateUserRequest{
		Active:      true,
		Username:    "admin",
		Email:       "admin@localhost.local",
		Password:    adminPassword,
		PassConfirm: adminPassword,
		Permissions: []int64{permIDs["manage-users"], permIDs["view-users"]},
		Groups:      []int64{groupIDs["admin"]},
	}); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Println("seeded roles, permissions, and admin account")
	return nil
}

func ensureGroups(ctx context.Context, repo *repository.AssignmentRepo, wanted map[string]string) (map[string]int64, error) {
	existing, err := repo.Groups(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(wanted))
	for _, g := range existing {
		ids[g.Name] = g.ID
	}
	for name, description := range wanted {
		if _, ok := ids[name]; ok {
			continue
		}
		id, err := repo.CreateGroup(ctx, name, description)
		if err != nil {
			return nil, fmt.Errorf("create group %q: %w", name, err)
		}
		ids[name] = id
	}
	return ids, nil
}

func ensurePermissions(ctx context.Context, repo *repository.AssignmentRepo, wanted map[string]string) (map[string]int64, error) {
	existing, err := repo.Permissions(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(wanted))
	for _, p := range existing {
		ids[p.Name] = p.ID
	}
	for name, description := range wanted {
		if _, ok := ids[name]; ok {
			continue
		}
		id, err := repo.CreatePermission(ctx, name, description)
		if err != nil {
			return nil, fmt.Errorf("create permission %q: %w", name, err)
		}
		ids[name] = id
	}
	return ids, nil
}

func newCreateUserCmd(dbPath *string) *cobra.Command {
	var (
		username    string
		email       string
		password    string
		inactive    bool
		groups      []string
		permissions []string
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user with the given roles and permissions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, cfg, err := openDB(*dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			assignRepo := repository.NewAssignmentRepo(db)
			userRepo := repository.NewUserRepo(db)

			groupIDs, err := resolveGroupNames(ctx, assignRepo, groups)
			if err != nil {
				return err
			}
			permIDs, err := resolvePermissionNames(ctx, assignRepo, permissions)
			if err != nil {
				return err
			}

			codec, err := token.NewCodec(cfg.TokenKey)
			if err != nil {
				return fmt.Errorf("token codec: %w", err)
			}
			users := service.NewUserService(db, userRepo, assignRepo, codec)
			if err := users.Create(ctx, domain.CreateUserRequest{
				Active:      !inactive,
				Username:    username,
				Email:       email,
				Password:    password,
				PassConfirm: password,
				Permissions: permIDs,
				Groups:      groupIDs,
			}); err != nil {
				var validation *domain.ValidationError
				if errors.As(err, &validation) {
					var lines []string
					for field, msg := range validation.Fields {
						lines = append(lines, field+": "+msg)
					}
					return errors.New(strings.Join(lines, "; "))
				}
				return err
			}
			fmt.Printf("created user %q\n", username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username (required)")
	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "password (required)")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "create the account in the inactive state")
	cmd.Flags().StringSliceVar(&groups, "groups", []string{"user"}, "role names to assign")
	cmd.Flags().StringSliceVar(&permissions, "permissions", []string{"view-users"}, "permission names to grant")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func resolveGroupNames(ctx context.Context, repo *repository.AssignmentRepo, names []string) ([]int64, error) {
	all, err := repo.Groups(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int64, len(all))
	for _, g := range all {
		byName[g.Name] = g.ID
	}
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		id, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown role %q (run seed first?)", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func resolvePermissionNames(ctx context.Context, repo *repository.AssignmentRepo, names []string) ([]int64, error) {
	all, err := repo.Permissions(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int64, len(all))
	for _, p := range all {
		byName[p.Name] = p.ID
	}
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		id, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown permission %q (run seed first?)", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
