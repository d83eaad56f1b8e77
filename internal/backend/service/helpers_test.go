package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/flowency/kavostack/internal/backend/domain"
	"github.com/flowency/kavostack/internal/backend/store/drivers/sqlite"
	"github.com/flowency/kavostack/pkg/cryptox"
	"github.com/flowency/kavostack/pkg/idx"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a file-backed sqlite store in a temp dir. File-backed
// rather than :memory: so tests exercising concurrent transactions share one
// database across connections.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") +
		"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))
	return st
}

func seedClient(t *testing.T, st *sqlite.Store, slug string) domain.Client {
	t.Helper()

	client := domain.Client{
		ID:   idx.New().String(),
		Name: "Client " + slug,
		Slug: slug,
	}
	require.NoError(t, st.Clients().CreateClient(context.Background(), client))
	return client
}

func seedInvitation(
	t *testing.T,
	st *sqlite.Store,
	clientID string,
	email string,
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
	require.NoError(t, st.Invitations().CreateInvitation(context.Background(), invitation))
	return invitation
}

func seedUser(
	t *testing.T,
	st *sqlite.Store,
	email string,
	password string,
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
	require.NoError(t, st.Users().CreateUser(context.Background(), user))
	return user
}
