package http

import (
	"encoding/json"
	"net/http"

	"github.com/gfinemax/worklog-mcr-sub000/internal/domain/auth"
	"github.com/gfinemax/worklog-mcr-sub000/internal/handler/http/response"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/jwt"
	worklogservice "github.com/gfinemax/worklog-mcr-sub000/internal/service/worklog"
	"github.com/go-chi/jwtauth/v5"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	ConfirmPIN(w http.ResponseWriter, r *http.Request)
}

type authHandlerImpl struct {
	authService auth.AuthService
	jwtService  jwt.Service
	autosaver   *worklogservice.Autosaver
}

func NewAuthHandler(authService auth.AuthService, jwtService jwt.Service, autosaver *worklogservice.Autosaver) AuthHandler {
	return &authHandlerImpl{
		authService: authService,
		jwtService:  jwtService,
		autosaver:   autosaver,
	}
}

// Login implements AuthHandler. The refresh token is delivered as an HttpOnly
// cookie; only the access token appears in the response body.
func (h *authHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, h.jwtService.RefreshTokenCookie(result.RefreshToken, result.RefreshExpiresAt))
	response.SuccessWithMessage(w, "Login successful", result)
}

// Logout implements AuthHandler. Pending autosaves are flushed first, and
// both tokens are revoked so a copied token cannot outlive the session.
func (h *authHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	h.autosaver.Flush(r.Context())

	if err := h.authService.Logout(r.Context(), actor.ID); err != nil {
		response.HandleError(w, err)
		return
	}

	if access := jwtauth.TokenFromHeader(r); access != "" {
		h.jwtService.RevokeToken(access)
	}
	if cookie, err := r.Cookie("refresh_token"); err == nil {
		h.jwtService.RevokeToken(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/api/v1/auth",
		MaxAge:   -1,
		HttpOnly: true,
	})

	response.SuccessWithMessage(w, "Logout successful", nil)
}

// Refresh implements AuthHandler.
func (h *authHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("refresh_token")
	if err != nil {
		response.Unauthorized(w, "Missing refresh token")
		return
	}

	result, err := h.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ConfirmPIN implements AuthHandler. The shared console uses this to verify
// an identity before a signature without re-logging the whole team in.
func (h *authHandlerImpl) ConfirmPIN(w http.ResponseWriter, r *http.Request) {
	var req auth.ConfirmPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	actor, err := h.authService.ConfirmPIN(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"id":           actor.ID,
		"name":         actor.Name,
		"account_type": actor.AccountType,
	})
}
