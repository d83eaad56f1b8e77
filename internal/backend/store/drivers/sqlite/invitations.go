package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/flowency/kavostack/internal/backend/domain"
	"github.com/flowency/kavostack/internal/backend/store"
)

type invitationsRepo struct {
	db dbtx
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (id, token, email, role, client_id, expires_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		inv.Token,
		inv.Email,
		string(inv.Role),
		inv.ClientID,
		inv.ExpiresAt,
		inv.CreatedBy,
	)
	return mapUnique(err)
}

func (r *invitationsRepo) GetInvitationByToken(
	ctx context.Context,
	token string,
) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, token, email, role, client_id, expires_at, accepted_at, created_by, created_at
		 FROM invitations WHERE token = ?`, token)

	var inv domain.Invitation
	var role string
	var acceptedAt sql.NullTime
	err := row.Scan(
		&inv.ID,
		&inv.Token,
		&inv.Email,
		&role,
		&inv.ClientID,
		&inv.ExpiresAt,
		&acceptedAt,
		&inv.CreatedBy,
		&inv.CreatedAt,
	)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	inv.Role = domain.Role(role)
	inv.AcceptedAt = mapNullTimePtr(acceptedAt)
	return inv, nil
}

// MarkInvitationAccepted is the at-most-once guard for acceptance. The
// `accepted_at IS NULL` predicate makes the update conditional: of any number
// of concurrent accepts for the same invitation, exactly one matches a row,
// and the rest get ErrConflict so the caller can roll back.
func (r *invitationsRepo) MarkInvitationAccepted(
	ctx context.Context,
	id string,
	at time.Time,
) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET accepted_at = ? WHERE id = ? AND accepted_at IS NULL`,
		at, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrConflict
	}
	return nil
}
