package service

import (
	"context"
	"testing"
	"time"

	"github.com/flowency/kavostack/internal/backend/domain"
	"github.com/stretchr/testify/require"
)

func TestLoginAndResolve(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st, Secret: []byte("test-secret"), TTL: time.Hour}

	client := seedClient(t, st, "t1")
	user := seedUser(t, st, "alice@b.com", "password1", domain.RoleClientMember, &client.ID)

	token, summary, err := svc.Login(ctx, "Alice@B.com", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, user.ID, summary.ID)
	require.Equal(t, "alice@b.com", summary.Email)

	sess := svc.Resolve(ctx, token)
	require.NotNil(t, sess)
	require.Equal(t, user.ID, sess.UserID)
	require.Equal(t, domain.RoleClientMember, sess.Role)
	require.NotNil(t, sess.ClientID)
	require.Equal(t, client.ID, *sess.ClientID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st, Secret: []byte("test-secret"), TTL: time.Hour}

	client := seedClient(t, st, "t1")
	seedUser(t, st, "alice@b.com", "password1", domain.RoleClientMember, &client.ID)

	_, _, err := svc.Login(ctx, "alice@b.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@b.com", "password1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveTreatsBadTokensAsAnonymous(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st, Secret: []byte("test-secret"), TTL: time.Hour}

	require.Nil(t, svc.Resolve(ctx, ""))
	require.Nil(t, svc.Resolve(ctx, "not-a-jwt"))

	// A token signed with a different secret is forged, not an error.
	other := &SessionService{Store: st, Secret: []byte("other-secret"), TTL: time.Hour}
	client := seedClient(t, st, "t1")
	seedUser(t, st, "alice@b.com", "password1", domain.RoleClientMember, &client.ID)
	forged, _, err := other.Login(ctx, "alice@b.com", "password1")
	require.NoError(t, err)
	require.Nil(t, svc.Resolve(ctx, forged))
}

func TestResolveExpiredToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st, Secret: []byte("test-secret"), TTL: -time.Minute}

	client := seedClient(t, st, "t1")
	seedUser(t, st, "alice@b.com", "password1", domain.RoleClientMember, &client.ID)

	token, _, err := svc.Login(ctx, "alice@b.com", "password1")
	require.NoError(t, err)
	require.Nil(t, svc.Resolve(ctx, token))
}

func TestSuperAdminSessionHasNoTenant(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st, Secret: []byte("test-secret"), TTL: time.Hour}

	seedUser(t, st, "root@kavostack.com", "password1", domain.RoleFlowencyAdmin, nil)

	token, _, err := svc.Login(ctx, "root@kavostack.com", "password1")
	require.NoError(t, err)

	sess := svc.Resolve(ctx, token)
	require.NotNil(t, sess)
	require.Equal(t, domain.RoleFlowencyAdmin, sess.Role)
	require.Nil(t, sess.ClientID)
}
