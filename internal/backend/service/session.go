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
	"github.com/flowency/kavostack/pkg/slogx"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// SessionService is the session authority: it turns credentials into signed
// session tokens and resolves tokens back into identity projections. Tokens
// are stateless HS256 JWTs carrying {sub, role, client_id}.
type SessionService struct {
	Store  store.Store
	Secret []byte
	TTL    time.Duration
}

type sessionClaims struct {
	Role     string `json:"role"`
	ClientID string `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}

// Login verifies the credentials and returns a signed session token together
// with the public user projection.
func (s *SessionService) Login(
	ctx context.Context,
	email string,
	password string,
) (string, domain.UserSummary, error) {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", domain.UserSummary{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("login attempted with unknown email")
			return "", domain.UserSummary{}, ErrInvalidCredentials
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return "", domain.UserSummary{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Warn("login attempted with wrong password", slog.String("user_id", user.ID))
		return "", domain.UserSummary{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := sessionClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
	}
	if user.ClientID != nil {
		claims.ClientID = *user.ClientID
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		log.Error("failed to sign session token", slog.Any("error", err))
		return "", domain.UserSummary{}, err
	}

	log.Info("user logged in", slog.String("user_id", user.ID))
	return token, user.Summary(), nil
}

// Resolve turns a raw session token into an identity projection. Malformed,
// forged, or expired tokens all resolve to anonymous (nil), never an error;
// the access gate decides what anonymous means for the request.
func (s *SessionService) Resolve(ctx context.Context, raw string) *domain.Session {
	if raw == "" {
		return nil
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		slogx.FromContext(ctx).Debug("session token rejected", slog.Any("error", err))
		return nil
	}

	sess := &domain.Session{
		UserID: claims.Subject,
		Role:   domain.Role(claims.Role),
	}
	if claims.ClientID != "" {
		clientID := claims.ClientID
		sess.ClientID = &clientID
	}
	return sess
}
