package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ivankudzin/muji/internal/domain/enums"
	"github.com/ivankudzin/muji/internal/domain/model"
	chatsvc "github.com/ivankudzin/muji/internal/services/chats"
	ordersvc "github.com/ivankudzin/muji/internal/services/orders"
	"github.com/ivankudzin/muji/internal/store"
	"github.com/ivankudzin/muji/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/muji/internal/transport/http/errors"
)

type AdminOrderHandler struct {
	store  *store.Store
	ledger *ordersvc.Service
	chats  *chatsvc.Service
}

func NewAdminOrderHandler(st *store.Store, ledger *ordersvc.Service, chats *chatsvc.Service) *AdminOrderHandler {
	return &AdminOrderHandler{store: st, ledger: ledger, chats: chats}
}

// List returns all orders, optionally filtered by status.
func (h *AdminOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	status := enums.OrderStatus(strings.TrimSpace(r.URL.Query().Get("status")))

	doc := h.store.Load()
	out := make([]dto.OrderResponse, 0, len(doc.Orders))
	for _, o := range doc.Orders {
		if status != "" && o.Status != status {
			continue
		}
		resp := mapOrder(o, "")
		resp.ExternalUserID = o.ExternalUserID
		out = append(out, resp)
	}
	httperrors.Write(w, http.StatusOK, dto.OrderListResponse{Orders: out})
}

// Confirm books one unpaid order by id. The confirmation goes through the
// chat so the user sees the same system message a bot-side confirmation
// produces.
func (h *AdminOrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	orderID, err := urlParamInt64(r, "orderID")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid order id")
		return
	}

	var confirmed *model.Order
	_, err = h.store.Update(func(doc *model.Document) error {
		var target *model.Order
		for i := range doc.Orders {
			if doc.Orders[i].ID == orderID {
				target = &doc.Orders[i]
				break
			}
		}
		if target == nil {
			return ordersvc.ErrOrderNotFound
		}
		if target.Status != enums.OrderStatusUnpaid {
			return errAlreadyBooked
		}

		if _, appendErr := h.chats.AppendMessage(doc, chatsvc.AppendInput{
			ProfileID:      target.ProfileID,
			ExternalUserID: target.ExternalUserID,
			FromUser:       false,
			Text:           "Payment successful",
		}); appendErr != nil {
			return appendErr
		}

		for i := range doc.Orders {
			if doc.Orders[i].ID == orderID {
				confirmed = &doc.Orders[i]
				break
			}
		}
		if confirmed == nil || confirmed.Status != enums.OrderStatusBooked {
			return errConfirmFailed
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ordersvc.ErrOrderNotFound):
			writeNotFound(w, "ORDER_NOT_FOUND", "order not found")
		case errors.Is(err, errAlreadyBooked):
			writeConflict(w, "ORDER_ALREADY_BOOKED", "order is already booked")
		case errors.Is(err, errConfirmFailed):
			writeConflict(w, "CONFIRM_FAILED", "order could not be booked")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to confirm order")
		}
		return
	}

	resp := mapOrder(*confirmed, "")
	resp.ExternalUserID = confirmed.ExternalUserID
	httperrors.Write(w, http.StatusOK, resp)
}

var (
	errAlreadyBooked = errors.New("order already booked")
	errConfirmFailed = errors.New("order confirmation failed")
)
