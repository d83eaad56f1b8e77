package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/flowency/kavostack/internal/backend/domain"
	"github.com/flowency/kavostack/internal/backend/store"
	"github.com/flowency/kavostack/pkg/cryptox"
	"github.com/flowency/kavostack/pkg/idx"
	"github.com/flowency/kavostack/pkg/slogx"
)

var (
	ErrAcceptFieldsMissing  = errors.New("name and password are required")
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvitationAccepted   = errors.New("invitation has already been accepted")
	ErrInvitationExpired    = errors.New("invitation has expired")
	ErrEmailTaken           = errors.New("an account with this email already exists")
	ErrInvalidMintRequest   = errors.New("invalid invitation request")
	ErrMintRoleNotPermitted = errors.New("cannot mint an invitation for that role")
	ErrClientNotFound       = errors.New("client not found")
)

const (
	// MinPasswordLength is enforced before any store access.
	MinPasswordLength = 8

	// DefaultInvitationTTL applies when the minting caller gives no expiry.
	DefaultInvitationTTL = 7 * 24 * time.Hour
)

type InvitationService struct {
	Store store.Store
}

// Accept converts a pending invitation into a user account exactly once.
//
// The pre-transaction reads (steps 2-4) exist for friendly errors only; the
// correctness guards live inside the transaction: the conditional
// accepted_at update closes the concurrent-accept race, and the unique email
// index closes the concurrent-registration race. Either guard failing rolls
// back every write of the acceptance.
func (s *InvitationService) Accept(
	ctx context.Context,
	token string,
	name string,
	password string,
) (domain.UserSummary, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input before touching the store.
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return domain.UserSummary{}, ErrAcceptFieldsMissing
	}
	if len(password) < MinPasswordLength {
		return domain.UserSummary{}, ErrPasswordTooShort
	}

	// 2. Look up the invitation by token.
	invitation, err := s.Store.Invitations().GetInvitationByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("acceptance attempted with unknown invitation token")
			return domain.UserSummary{}, ErrInvitationNotFound
		}
		log.Error("failed to fetch invitation", slog.Any("error", err))
		return domain.UserSummary{}, err
	}

	// 3. Reject expired or consumed invitations. Expiry is checked first: an
	// invitation past its expiry reports Expired no matter what state its
	// accepted marker is in.
	now := time.Now().UTC()
	if invitation.IsExpired(now) {
		log.Warn("acceptance attempted with expired invitation",
			slog.String("invitation_id", invitation.ID),
			slog.Time("expires_at", invitation.ExpiresAt),
		)
		return domain.UserSummary{}, ErrInvitationExpired
	}
	if invitation.IsAccepted() {
		log.Warn("acceptance attempted with consumed invitation",
			slog.String("invitation_id", invitation.ID),
		)
		return domain.UserSummary{}, ErrInvitationAccepted
	}

	// 4. Friendly pre-check for an existing account. The unique index on
	// users.email is the authoritative guard; this only shapes the error.
	_, err = s.Store.Users().GetUserByEmail(ctx, invitation.Email)
	if err == nil {
		log.Warn("acceptance attempted for already-registered email",
			slog.String("invitation_id", invitation.ID),
		)
		return domain.UserSummary{}, ErrEmailTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check email availability", slog.Any("error", err))
		return domain.UserSummary{}, err
	}

	// 5. Hash the password. The plaintext goes no further than this call.
	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.UserSummary{}, err
	}

	// 6. Consume the invitation, create the user, and write the audit entry
	// as one atomic unit.
	newUser := domain.User{
		ID:            idx.New().String(),
		Email:         invitation.Email,
		Name:          name,
		Role:          invitation.Role,
		ClientID:      &invitation.ClientID,
		PasswordHash:  passwordHash,
		EmailVerified: true,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Conditional update first: loser of a concurrent accept stops here.
		if err := tx.Invitations().MarkInvitationAccepted(ctx, invitation.ID, now); err != nil {
			return err
		}

		if err := tx.Users().CreateUser(ctx, newUser); err != nil {
			return err
		}

		// Audit entry shares the transaction: if it fails, the user is not
		// persisted. Details carry a snapshot independent of later user
		// mutation.
		return tx.ActivityLogs().Append(ctx, domain.ActivityLog{
			ID:         idx.New().String(),
			ClientID:   invitation.ClientID,
			UserID:     newUser.ID,
			Action:     domain.ActionUserJoined,
			EntityType: "user",
			EntityID:   newUser.ID,
			Details: domain.ActivityDetails{
				UserName:  name,
				UserEmail: invitation.Email,
				Role:      invitation.Role,
			},
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			log.Warn("lost acceptance race",
				slog.String("invitation_id", invitation.ID),
			)
			return domain.UserSummary{}, ErrInvitationAccepted
		case errors.Is(err, store.ErrAlreadyExists):
			log.Warn("lost registration race",
				slog.String("invitation_id", invitation.ID),
			)
			return domain.UserSummary{}, ErrEmailTaken
		}
		log.Error("failed to accept invitation",
			slog.String("invitation_id", invitation.ID),
			slog.Any("error", err),
		)
		return domain.UserSummary{}, err
	}

	log.Info("user joined via invitation",
		slog.String("user_id", newUser.ID),
		slog.String("invitation_id", invitation.ID),
		slog.String("client_id", invitation.ClientID),
		slog.String("role", string(invitation.Role)),
	)

	return newUser.Summary(), nil
}

// Mint creates a new invitation for an email/role/tenant triple. The caller
// is expected to have passed the access-gate guards already; Mint enforces
// the escalation rule that only a flowency_admin may invite another
// flowency_admin.
func (s *InvitationService) Mint(
	ctx context.Context,
	sess *domain.Session,
	email string,
	role domain.Role,
	clientID string,
	ttl time.Duration,
) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || clientID == "" || !role.Valid() {
		return domain.Invitation{}, ErrInvalidMintRequest
	}

	// Privilege escalation guard: tenant admins cannot invite super-admins.
	if role.IsFlowencyAdmin() && (sess == nil || !sess.Role.IsFlowencyAdmin()) {
		log.Warn("attempted to mint a super-admin invitation",
			slog.String("client_id", clientID),
		)
		return domain.Invitation{}, ErrMintRoleNotPermitted
	}

	if _, err := s.Store.Clients().GetClientByID(ctx, clientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrClientNotFound
		}
		log.Error("failed to fetch client", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invitation token", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	if ttl <= 0 {
		ttl = DefaultInvitationTTL
	}

	invitation := domain.Invitation{
		ID:        idx.New().String(),
		Token:     token,
		Email:     email,
		Role:      role,
		ClientID:  clientID,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if sess != nil {
		invitation.CreatedBy = sess.UserID
	}

	if err := s.Store.Invitations().CreateInvitation(ctx, invitation); err != nil {
		log.Error("failed to create invitation",
			slog.String("invitation_id", invitation.ID),
			slog.Any("error", err),
		)
		return domain.Invitation{}, err
	}

	log.Debug("invitation minted",
		slog.String("invitation_id", invitation.ID),
		slog.String("client_id", clientID),
		slog.String("role", string(role)),
		slog.Time("expires_at", invitation.ExpiresAt),
	)

	return invitation, nil
}

// InvitationPreview is the public projection shown on the invite landing
// page. It never exposes the token or any account data.
type InvitationPreview struct {
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	ClientName string      `json:"clientName"`
	ExpiresAt  time.Time   `json:"expiresAt"`
	Expired    bool        `json:"expired"`
	Accepted   bool        `json:"accepted"`
}

// Lookup resolves an invitation token into its landing-page projection.
func (s *InvitationService) Lookup(ctx context.Context, token string) (InvitationPreview, error) {
	log := slogx.FromContext(ctx)

	invitation, err := s.Store.Invitations().GetInvitationByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return InvitationPreview{}, ErrInvitationNotFound
		}
		log.Error("failed to fetch invitation", slog.Any("error", err))
		return InvitationPreview{}, err
	}

	client, err := s.Store.Clients().GetClientByID(ctx, invitation.ClientID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to fetch client", slog.Any("error", err))
		return InvitationPreview{}, err
	}

	return InvitationPreview{
		Email:      invitation.Email,
		Role:       invitation.Role,
		ClientName: client.Name,
		ExpiresAt:  invitation.ExpiresAt,
		Expired:    invitation.IsExpired(time.Now().UTC()),
		Accepted:   invitation.IsAccepted(),
	}, nil
}
