package handlers

import (
	"errors"
	"net/http"

	"github.com/ivankudzin/muji/internal/domain/enums"
	"github.com/ivankudzin/muji/internal/domain/model"
	settingssvc "github.com/ivankudzin/muji/internal/services/settings"
	"github.com/ivankudzin/muji/internal/store"
	"github.com/ivankudzin/muji/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/muji/internal/transport/http/errors"
)

type AdminSettingsHandler struct {
	store   *store.Store
	service *settingssvc.Service
}

func NewAdminSettingsHandler(st *store.Store, service *settingssvc.Service) *AdminSettingsHandler {
	return &AdminSettingsHandler{store: st, service: service}
}

func (h *AdminSettingsHandler) UpdateWallets(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateWalletsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid wallets body")
		return
	}

	_, err := h.store.Update(func(doc *model.Document) error {
		return h.service.UpdateWallets(doc, req.Wallets)
	})
	if err != nil {
		if errors.Is(err, settingssvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "at least one wallet is required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to update wallets")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminSettingsHandler) UpdateBanner(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateBannerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid banner body")
		return
	}

	_, err := h.store.Update(func(doc *model.Document) error {
		h.service.UpdateBanner(doc, model.Banner{
			Text:     req.Text,
			Link:     req.Link,
			LinkText: req.LinkText,
			Visible:  req.Visible,
		})
		return nil
	})
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to update banner")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminSettingsHandler) UpdateBonus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateBonusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid bonus body")
		return
	}

	_, err := h.store.Update(func(doc *model.Document) error {
		return h.service.UpdateBonusPercentage(doc, req.Percentage)
	})
	if err != nil {
		if errors.Is(err, settingssvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "percentage must be between 0 and 100")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to update bonus percentage")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats aggregates the panel dashboard counters in one pass.
func (h *AdminSettingsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	doc := h.store.Load()

	stats := dto.StatsResponse{
		Profiles: len(doc.Profiles),
		Chats:    len(doc.Chats),
		Messages: len(doc.Messages),
	}
	for _, o := range doc.Orders {
		switch o.Status {
		case enums.OrderStatusUnpaid:
			stats.UnpaidOrders++
		case enums.OrderStatusBooked:
			stats.BookedOrders++
			stats.BookedTotal += o.TotalAmount
		}
	}

	httperrors.Write(w, http.StatusOK, stats)
}
