package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/ivankudzin/muji/internal/domain/enums"
	"github.com/ivankudzin/muji/internal/domain/model"
	authsvc "github.com/ivankudzin/muji/internal/services/auth"
	ordersvc "github.com/ivankudzin/muji/internal/services/orders"
	"github.com/ivankudzin/muji/internal/store"
	"github.com/ivankudzin/muji/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/muji/internal/transport/http/errors"
)

const qrImageSize = 256

type PaymentHandler struct {
	store   *store.Store
	service *ordersvc.Service
}

func NewPaymentHandler(st *store.Store, service *ordersvc.Service) *PaymentHandler {
	return &PaymentHandler{store: st, service: service}
}

// Quote creates or refreshes the caller's unpaid order for a profile and
// returns it together with the wallet address to pay to.
func (h *PaymentHandler) Quote(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.QuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid payment request body")
		return
	}

	var (
		order   *model.Order
		address string
	)
	_, err := h.store.Update(func(doc *model.Document) error {
		quoted, quoteErr := h.service.Quote(doc, ordersvc.QuoteInput{
			ProfileID:      req.ProfileID,
			ExternalUserID: identity.ExternalUserID,
			Amount:         req.Amount,
			WalletType:     req.WalletType,
			Currency:       req.Currency,
		})
		if quoteErr != nil {
			return quoteErr
		}
		order = quoted
		address = doc.Settings.CryptoWallets[strings.ToLower(quoted.WalletType)]
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ordersvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "amount and wallet type are required")
		case errors.Is(err, ordersvc.ErrProfileNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to create order")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, mapOrder(*order, address))
}

// QR renders the configured wallet address for a wallet kind as a PNG.
func (h *PaymentHandler) QR(w http.ResponseWriter, r *http.Request) {
	wallet := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "wallet")))
	if wallet == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "wallet kind is required")
		return
	}

	doc := h.store.Load()
	address := doc.Settings.CryptoWallets[wallet]
	if address == "" {
		writeNotFound(w, "WALLET_NOT_FOUND", "wallet is not configured")
		return
	}

	png, err := qrcode.Encode(address, qrcode.Medium, qrImageSize)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to render qr code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// UserOrders lists the caller's orders, optionally filtered by status.
func (h *PaymentHandler) UserOrders(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	status := enums.OrderStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	doc := h.store.Load()
	orders := h.service.ListForUser(doc, identity.ExternalUserID, status)

	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, mapOrder(o, doc.Settings.CryptoWallets[strings.ToLower(o.WalletType)]))
	}
	httperrors.Write(w, http.StatusOK, dto.OrderListResponse{Orders: out})
}

// DeleteOrder removes the caller's own order.
func (h *PaymentHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	orderID, err := urlParamInt64(r, "orderID")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid order id")
		return
	}

	_, err = h.store.Update(func(doc *model.Document) error {
		return h.service.Delete(doc, orderID, identity.ExternalUserID)
	})
	if err != nil {
		if errors.Is(err, ordersvc.ErrOrderNotFound) {
			writeNotFound(w, "ORDER_NOT_FOUND", "order not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to delete order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
