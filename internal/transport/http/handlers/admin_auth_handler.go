package handlers

import (
	"errors"
	"net/http"

	adminauthsvc "github.com/ivankudzin/muji/internal/services/adminauth"
	"github.com/ivankudzin/muji/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/muji/internal/transport/http/errors"
)

const AdminCookieName = "admin_token"

type AdminAuthHandler struct {
	service *adminauthsvc.Service
	secure  bool
}

func NewAdminAuthHandler(service *adminauthsvc.Service, secure bool) *AdminAuthHandler {
	return &AdminAuthHandler{service: service, secure: secure}
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid login body")
		return
	}

	token, expires, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, adminauthsvc.ErrInvalidCredentials) {
			writeUnauthorized(w, "INVALID_CREDENTIALS", "invalid username or password")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to open admin session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	httperrors.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
