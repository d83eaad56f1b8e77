package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/flowency/kavostack/internal/backend/access"
	"github.com/flowency/kavostack/internal/backend/domain"
	"github.com/flowency/kavostack/internal/backend/service"
	"github.com/flowency/kavostack/pkg/api"
	"github.com/flowency/kavostack/pkg/httpx"
	"github.com/flowency/kavostack/pkg/slogx"
)

// InvitationMintHandler creates an invitation for a tenant. Only admins may
// mint, and tenant admins only for their own tenant.
//
// POST /api/clients/{id}/invitations
type InvitationMintHandler struct {
	InvitationService *service.InvitationService
}

func (h *InvitationMintHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	sess := SessionFromContext(ctx)
	if sess == nil {
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	clientID := r.PathValue("id")
	if res := access.RequireRole(sess, domain.RoleFlowencyAdmin, domain.RoleClientAdmin); !res.Allowed {
		log.Warn("invitation mint denied", "reason", res.Reason)
		deny(w, r)
		return
	}
	if res := access.RequireClientAccess(sess, clientID); !res.Allowed {
		log.Warn("invitation mint denied", "reason", res.Reason)
		deny(w, r)
		return
	}

	var req api.MintInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ttl := time.Duration(req.ExpiresInHours) * time.Hour
	invitation, err := h.InvitationService.Mint(ctx, sess, req.Email, domain.Role(req.Role), clientID, ttl)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMintRequest):
			httpx.WriteError(w, http.StatusBadRequest, "Invalid invitation request")
		case errors.Is(err, service.ErrMintRoleNotPermitted):
			httpx.WriteError(w, http.StatusForbidden, "Cannot create an invitation for that role")
		case errors.Is(err, service.ErrClientNotFound):
			httpx.WriteError(w, http.StatusNotFound, "Client not found")
		default:
			log.Error("failed to create invitation", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Failed to create invitation")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, api.MintInvitationResponse{
		ID:        invitation.ID,
		Token:     invitation.Token,
		Email:     invitation.Email,
		Role:      string(invitation.Role),
		ClientID:  invitation.ClientID,
		ExpiresAt: invitation.ExpiresAt,
	})
}
