package handlers

import (
	"errors"
	"net/http"

	settingssvc "github.com/ivankudzin/muji/internal/services/settings"
	"github.com/ivankudzin/muji/internal/store"
	"github.com/ivankudzin/muji/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/muji/internal/transport/http/errors"
)

type SettingsHandler struct {
	store   *store.Store
	service *settingssvc.Service
}

func NewSettingsHandler(st *store.Store, service *settingssvc.Service) *SettingsHandler {
	return &SettingsHandler{store: st, service: service}
}

func (h *SettingsHandler) Banner(w http.ResponseWriter, r *http.Request) {
	doc := h.store.Load()
	banner := doc.Settings.Banner
	httperrors.Write(w, http.StatusOK, dto.BannerResponse{
		Text:     banner.Text,
		Link:     banner.Link,
		LinkText: banner.LinkText,
		Visible:  banner.Visible,
	})
}

func (h *SettingsHandler) App(w http.ResponseWriter, r *http.Request) {
	doc := h.store.Load()
	httperrors.Write(w, http.StatusOK, dto.AppSettingsResponse{
		Name:            doc.Settings.App.Name,
		BonusPercentage: doc.Settings.BonusPercentage,
	})
}

// Wallets returns the configured wallet addresses the user can pay to.
func (h *SettingsHandler) Wallets(w http.ResponseWriter, r *http.Request) {
	doc := h.store.Load()
	httperrors.Write(w, http.StatusOK, dto.WalletsResponse{Wallets: doc.Settings.CryptoWallets})
}

func (h *SettingsHandler) ValidatePromocode(w http.ResponseWriter, r *http.Request) {
	var req dto.ValidatePromocodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid promocode body")
		return
	}

	doc := h.store.Load()
	promo, err := h.service.ValidatePromocode(doc, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, settingssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "promocode is required")
		case errors.Is(err, settingssvc.ErrPromocodeNotFound):
			writeNotFound(w, "PROMOCODE_NOT_FOUND", "promocode not found")
		case errors.Is(err, settingssvc.ErrPromocodeInactive):
			writeConflict(w, "PROMOCODE_INACTIVE", "promocode is no longer active")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to validate promocode")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PromocodeResponse{
		Code:     promo.Code,
		Discount: promo.Discount,
		IsActive: promo.IsActive,
	})
}
