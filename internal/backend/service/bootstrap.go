package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/flowency/kavostack/internal/backend/domain"
	"github.com/flowency/kavostack/internal/backend/store"
	"github.com/flowency/kavostack/pkg/cryptox"
	"github.com/flowency/kavostack/pkg/idx"
	"github.com/flowency/kavostack/pkg/slogx"
)

var ErrSeedIncomplete = errors.New("seed data missing admin credentials")

// BootstrapService seeds the first admin account and, optionally, a demo
// tenant. Every step is an idempotent upsert, so the seed is safe to run on
// every startup.
type BootstrapService struct {
	Store store.Store
}

func (s *BootstrapService) Seed(ctx context.Context, data domain.BootstrapData) error {
	log := slogx.FromContext(ctx)

	email := strings.ToLower(strings.TrimSpace(data.AdminEmail))
	if email == "" || data.AdminPassword == "" {
		return ErrSeedIncomplete
	}

	_, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		log.Debug("admin user already exists", slog.String("email", email))
	case errors.Is(err, store.ErrNotFound):
		passwordHash, err := cryptox.HashPassword(data.AdminPassword)
		if err != nil {
			return err
		}

		admin := domain.User{
			ID:            idx.New().String(),
			Email:         email,
			Name:          data.AdminName,
			Role:          domain.RoleFlowencyAdmin,
			PasswordHash:  passwordHash,
			EmailVerified: true,
		}
		if err := s.Store.Users().CreateUser(ctx, admin); err != nil {
			// A concurrent seed run may have won; that still counts as seeded.
			if !errors.Is(err, store.ErrAlreadyExists) {
				return err
			}
		} else {
			log.Info("created admin user", slog.String("email", email))
		}
	default:
		return err
	}

	if !data.CreateDemoClient {
		return nil
	}

	_, err = s.Store.Clients().GetClientBySlug(ctx, "demo")
	switch {
	case err == nil:
		log.Debug("demo client already exists")
	case errors.Is(err, store.ErrNotFound):
		demo := domain.Client{
			ID:          idx.New().String(),
			Name:        "Demo Client",
			Slug:        "demo",
			Description: "A demo client for testing the backlog system",
		}
		if err := s.Store.Clients().CreateClient(ctx, demo); err != nil {
			if !errors.Is(err, store.ErrAlreadyExists) {
				return err
			}
		} else {
			log.Info("created demo client")
		}
	default:
		return err
	}

	return nil
}
