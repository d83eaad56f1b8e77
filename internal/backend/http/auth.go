package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/flowency/kavostack/internal/backend/service"
	"github.com/flowency/kavostack/pkg/api"
	"github.com/flowency/kavostack/pkg/httpx"
	"github.com/flowency/kavostack/pkg/slogx"
)

// LoginHandler exchanges credentials for a session. The signed token is set
// as an HttpOnly cookie for browsers and echoed in the body for API clients.
//
// POST /api/auth/login
type LoginHandler struct {
	SessionService *service.SessionService
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, user, err := h.SessionService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Error("failed to log in", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.SessionService.TTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	httpx.WriteJSON(w, http.StatusOK, api.LoginResponse{
		Success: true,
		Token:   token,
		User:    api.User{ID: user.ID, Email: user.Email, Name: user.Name},
	})
}

// LogoutHandler clears the session cookie. Tokens are stateless, so logout
// is purely a client-side discard.
//
// POST /api/auth/logout
func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		httpx.WriteJSON(w, http.StatusOK, api.LogoutResponse{Success: true})
	}
}
