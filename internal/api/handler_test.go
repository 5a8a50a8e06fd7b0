package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-admin/internal/db"
	"user-admin/internal/db/repository"
	"user-admin/internal/domain"
	"user-admin/internal/middleware"
	"user-admin/internal/service"
	"user-admin/internal/token"
)

const testTokenKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

type apiFixture struct {
	router   http.Handler
	sessions *middleware.SessionManager
	users    *service.UserService
	userRepo *repository.UserRepo
	codec    *token.Codec
	permID   int64
	groupID  int64
}

func setupAPI(t *testing.T) *apiFixture {
	t.Helper()

	writeDB, _ := db.OpenTestSQLite(t)

	userRepo := repository.NewUserRepo(writeDB)
	assignRepo := repository.NewAssignmentRepo(writeDB)

	codec, err := token.NewCodec(testTokenKey)
	require.NoError(t, err)

	users := service.NewUserService(writeDB, userRepo, assignRepo, codec)
	listing := service.NewListingService(userRepo, codec, "/admin/users")

	sessions, err := middleware.NewSessionManager("api-test-session-secret", time.Hour, false)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(users, listing, logger)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(sessions, "/login"))
		MountRoutes(r, h)
	})

	ctx := context.Background()
	permID, err := assignRepo.CreatePermission(ctx, "manage-users", "")
	require.NoError(t, err)
	groupID, err := assignRepo.CreateGroup(ctx, "admin", "")
	require.NoError(t, err)

	return &apiFixture{
		router:   router,
		sessions: sessions,
		users:    users,
		userRepo: userRepo,
		codec:    codec,
		permID:   permID,
		groupID:  groupID,
	}
}

func (f *apiFixture) createUser(t *testing.T, username, email string) *domain.User {
	t.Helper()
	err := f.users.Create(context.Background(), domain.CreateUserRequest{
		Active:      true,
		Username:    username,
		Email:       email,
		Password:    "secret pass",
		PassConfirm: "secret pass",
		Permissions: []int64{f.permID},
		Groups:      []int64{f.groupID},
	})
	require.NoError(t, err)
	u, err := f.userRepo.GetByUsername(context.Background(), username)
	require.NoError(t, err)
	return u
}

func (f *apiFixture) authedRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	tok, err := f.sessions.Issue(domain.SessionUser{ID: 1, Username: "admin"})
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: tok})
	return req
}

func TestAPI_RequiresSession(t *testing.T) {
	f := setupAPI(t)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestAPI_ListUsers(t *testing.T) {
	f := setupAPI(t)
	f.createUser(t, "alice", "alice@example.com")
	f.createUser(t, "bob", "bob@example.com")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, f.authedRequest(t, http.MethodGet, "/v1/users?draw=1&start=0&length=10"))

	require.Equal(t, http.StatusOK, rec.Code)
	var result domain.ListingResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, int64(2), result.RecordsTotal)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "alice", result.Rows[0].Username)
	assert.NotEmpty(t, result.Rows[0].EditURL)
}

func TestAPI_GetUser(t *testing.T) {
	f := setupAPI(t)
	alice := f.createUser(t, "alice", "alice@example.com")

	tok, err := f.codec.Encode(alice.ID)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, f.authedRequest(t, http.MethodGet, "/v1/users/"+tok))

	require.Equal(t, http.StatusOK, rec.Code)
	var u User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&u))
	assert.Equal(t, tok, u.Token)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, u.Active)
	assert.Equal(t, []int64{f.permID}, u.PermissionIDs)
	assert.Equal(t, []int64{f.groupID}, u.GroupIDs)
}

func TestAPI_GetUnknownTokenIsNotFound(t *testing.T) {
	f := setupAPI(t)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, f.authedRequest(t, http.MethodGet, "/v1/users/garbage-token"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.InDelta(t, float64(http.StatusNotFound), body["code"], 0.001)
}

func TestAPI_DeleteUser(t *testing.T) {
	f := setupAPI(t)
	alice := f.createUser(t, "alice", "alice@example.com")

	tok, err := f.codec.Encode(alice.ID)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, f.authedRequest(t, http.MethodDelete, "/v1/users/"+tok))

	require.Equal(t, http.StatusOK, rec.Code)

	_, err = f.userRepo.GetByID(context.Background(), alice.ID)
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
