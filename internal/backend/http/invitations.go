package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flowency/kavostack/internal/backend/service"
	"github.com/flowency/kavostack/pkg/api"
	"github.com/flowency/kavostack/pkg/httpx"
	"github.com/flowency/kavostack/pkg/slogx"
)

// InvitationAcceptHandler converts a pending invitation into a user account.
//
// POST /api/invitations/{token}/accept
type InvitationAcceptHandler struct {
	InvitationService *service.InvitationService
}

func (h *InvitationAcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req api.AcceptInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.InvitationService.Accept(ctx, r.PathValue("token"), req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAcceptFieldsMissing):
			httpx.WriteError(w, http.StatusBadRequest, "Name and password are required")
		case errors.Is(err, service.ErrPasswordTooShort):
			httpx.WriteError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		case errors.Is(err, service.ErrInvitationNotFound):
			httpx.WriteError(w, http.StatusNotFound, "Invitation not found")
		case errors.Is(err, service.ErrInvitationAccepted):
			httpx.WriteError(w, http.StatusBadRequest, "Invitation has already been accepted")
		case errors.Is(err, service.ErrInvitationExpired):
			httpx.WriteError(w, http.StatusBadRequest, "Invitation has expired")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusBadRequest, "An account with this email already exists")
		default:
			log.Error("failed to accept invitation", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Failed to accept invitation")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, api.AcceptInvitationResponse{
		Success: true,
		User:    api.User{ID: user.ID, Email: user.Email, Name: user.Name},
	})
}

// InvitationLookupHandler serves the public landing-page projection of an
// invitation.
//
// GET /api/invitations/{token}
type InvitationLookupHandler struct {
	InvitationService *service.InvitationService
}

func (h *InvitationLookupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	preview, err := h.InvitationService.Lookup(ctx, r.PathValue("token"))
	if err != nil {
		if errors.Is(err, service.ErrInvitationNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Invitation not found")
			return
		}
		log.Error("failed to load invitation", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to load invitation")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, api.InvitationPreview{
		Email:      preview.Email,
		Role:       string(preview.Role),
		ClientName: preview.ClientName,
		ExpiresAt:  preview.ExpiresAt,
		Expired:    preview.Expired,
		Accepted:   preview.Accepted,
	})
}
