// Package app wires repositories, services, and handlers from the
// database handles and config that main() provides.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"user-admin/internal/api"
	"user-admin/internal/config"
	"user-admin/internal/db/repository"
	"user-admin/internal/middleware"
	"user-admin/internal/service"
	"user-admin/internal/token"
	"user-admin/internal/ui"
)

// UserRoutesBase is the mount point of the HTML user routes. Row action
// URLs in listing responses are built against it.
const UserRoutesBase = "/admin/users"

// Deps holds the external dependencies the app cannot create itself.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// App is the fully-wired application.
type App struct {
	Users    *service.UserService
	Listing  *service.ListingService
	Sessions *middleware.SessionManager
	UI       *ui.Handler
	API      *api.Handler
}

// New wires the application from the provided deps.
func New(deps Deps) (*App, error) {
	cfg := deps.Cfg

	// Writes go through the single-connection pool; the listing reads can
	// use the read pool.
	userWriteRepo := repository.NewUserRepo(deps.WriteDB)
	userReadRepo := repository.NewUserRepo(deps.ReadDB)
	assignRepo := repository.NewAssignmentRepo(deps.WriteDB)

	codec, err := token.NewCodec(cfg.TokenKey)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	sessions, err := middleware.NewSessionManager(cfg.SessionSecret, 24*time.Hour, cfg.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}

	users := service.NewUserService(deps.WriteDB, userWriteRepo, assignRepo, codec)
	listing := service.NewListingService(userReadRepo, codec, UserRoutesBase)

	uiHandler := ui.NewHandler(users, listing, sessions, deps.Logger.With("component", "ui"), cfg.IsProduction())
	apiHandler := api.NewHandler(users, listing, deps.Logger.With("component", "api"))

	return &App{
		Users:    users,
		Listing:  listing,
		Sessions: sessions,
		UI:       uiHandler,
		API:      apiHandler,
	}, nil
}
