package store

import (
	"context"
	"errors"
	"time"

	"github.com/flowency/kavostack/internal/backend/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict reports a conditional write whose predicate matched zero
	// rows, e.g. accepting an invitation that a concurrent request already
	// consumed.
	ErrConflict = errors.New("store: conflicting update")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable.
type Store interface {
	Users() Users
	Clients() Clients
	Invitations() Invitations
	ActivityLogs() ActivityLogs

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// This is the recommended way to handle transactions as it automatically
	// handles commit/rollback logic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks a user up by lower-cased email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// A duplicate email maps to ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Clients interface {
	// GetClientByID fetches a tenant by id.
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// GetClientBySlug fetches a tenant by its unique slug.
	GetClientBySlug(ctx context.Context, slug string) (domain.Client, error)

	// CreateClient inserts a new tenant. A duplicate slug maps to
	// ErrAlreadyExists.
	CreateClient(ctx context.Context, c domain.Client) error
}

type Invitations interface {
	// CreateInvitation writes a new pending invitation.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetInvitationByToken returns the invitation for a token regardless of
	// its accepted or expired state; callers decide what those states mean.
	GetInvitationByToken(ctx context.Context, token string) (domain.Invitation, error)

	// MarkInvitationAccepted sets accepted_at with an `accepted_at IS NULL`
	// predicate. If the predicate matches zero rows (a concurrent accept
	// won), it returns ErrConflict and writes nothing. This is the
	// at-most-once guard for acceptance; it must run inside the same
	// transaction as the user creation.
	MarkInvitationAccepted(ctx context.Context, id string, at time.Time) error
}

type ActivityLogs interface {
	// Append writes an audit entry. Entries are immutable; there is no
	// update or delete.
	Append(ctx context.Context, entry domain.ActivityLog) error

	// ListByClient returns a tenant's entries, newest first.
	ListByClient(ctx context.Context, clientID string) ([]domain.ActivityLog, error)
}
