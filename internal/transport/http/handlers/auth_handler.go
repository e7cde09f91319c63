package handlers

import (
	"errors"
	"net/http"
	"time"

	authsvc "github.com/ivankudzin/muji/internal/services/auth"
	"github.com/ivankudzin/muji/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/muji/internal/transport/http/errors"
)

const SessionCookieName = "sid"

type AuthHandler struct {
	service    *authsvc.Service
	sessionTTL time.Duration
	secure     bool
}

func NewAuthHandler(service *authsvc.Service, sessionTTL time.Duration, secure bool) *AuthHandler {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthHandler{service: service, sessionTTL: sessionTTL, secure: secure}
}

// Telegram exchanges Mini App init data for a session cookie.
func (h *AuthHandler) Telegram(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.TelegramAuthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid auth request body")
		return
	}

	record, err := h.service.Authenticate(r.Context(), req.InitData)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidInput):
			writeBadRequest(w, "VALIDATION_ERROR", "init data is required")
		case errors.Is(err, authsvc.ErrUnauthorized):
			writeUnauthorized(w, "UNAUTHORIZED", "init data validation failed")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to open session")
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    record.SID,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	httperrors.Write(w, http.StatusOK, dto.AuthUserResponse{
		ExternalUserID: record.ExternalUserID,
		Username:       record.Username,
		FirstName:      record.FirstName,
	})
}

// Me reports the identity behind the session cookie.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	record, err := h.service.Resolve(r.Context(), identity.SID)
	if err != nil {
		if errors.Is(err, authsvc.ErrUnauthorized) {
			writeUnauthorized(w, "UNAUTHORIZED", "session expired")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to resolve session")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AuthUserResponse{
		ExternalUserID: record.ExternalUserID,
		Username:       record.Username,
		FirstName:      record.FirstName,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		_ = h.service.Logout(r.Context(), cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
