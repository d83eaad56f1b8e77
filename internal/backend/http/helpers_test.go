package http_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/flowency/kavostack/internal/backend/domain"
	backendhttp "github.com/flowency/kavostack/internal/backend/http"
	"github.com/flowency/kavostack/internal/backend/service"
	"github.com/flowency/kavostack/internal/backend/store/drivers/sqlite"
	"github.com/flowency/kavostack/pkg/cryptox"
	"github.com/flowency/kavostack/pkg/idx"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	Server      *httptest.Server
	Store       *sqlite.Store
	Sessions    *service.SessionService
	Invitations *service.InvitationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") +
		"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	sessions := &service.SessionService{
		Store:  st,
		Secret: []byte("test-session-secret"),
		TTL:    time.Hour,
	}
	invitations := &service.InvitationService{Store: st}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := backendhttp.NewRouter("test", st, sessions, invitations, logger)
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{
		Server:      srv,
		Store:       st,
		Sessions:    sessions,
		Invitations: invitations,
	}
}

// noRedirect returns a client that surfaces redirects instead of following
// them, so gate decisions can be asserted directly.
func noRedirect() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *testEnv) seedClient(t *testing.T, slug string) domain.Client {
	t.Helper()

	client := domain.Client{
		ID:   idx.New().String(),
		Name: "Client " + slug,
		Slug: slug,
	}
	require.NoError(t, e.Store.Clients().CreateClient(context.Background(), client))
	return client
}

func (e *testEnv) seedUser(
	t *testing.T,
	email, password string,
	role domain.Role,
	clientID *string,
) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	user := domain.User{
		ID:            idx.New().String(),
		Email:         email,
		Name:          "Seeded User",
		Role:          role,
		ClientID:      clientID,
		PasswordHash:  hash,
		EmailVerified: true,
	}
	require.NoError(t, e.Store.Users().CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) seedInvitation(
	t *testing.T,
	clientID, email string,
	role domain.Role,
	expiresAt time.Time,
) domain.Invitation {
	t.Helper()

	invitation := domain.Invitation{
		ID:        idx.New().String(),
		Token:     cryptox.MustGenerateToken(cryptox.TokenSize256),
		Email:     email,
		Role:      role,
		ClientID:  clientID,
		ExpiresAt: expiresAt,
		CreatedBy: "seed",
	}
	require.NoError(t, e.Store.Invitations().CreateInvitation(context.Background(), invitation))
	return invitation
}
