package handlers

import (
	"errors"
	"net/http"

	"github.com/ivankudzin/muji/internal/domain/model"
	chatsvc "github.com/ivankudzin/muji/internal/services/chats"
	"github.com/ivankudzin/muji/internal/store"
	"github.com/ivankudzin/muji/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/muji/internal/transport/http/errors"
)

type AdminChatHandler struct {
	store   *store.Store
	service *chatsvc.Service
}

func NewAdminChatHandler(st *store.Store, service *chatsvc.Service) *AdminChatHandler {
	return &AdminChatHandler{store: st, service: service}
}

// List shows every conversation with its unread counter.
func (h *AdminChatHandler) List(w http.ResponseWriter, r *http.Request) {
	doc := h.store.Load()

	out := make([]dto.AdminChatResponse, 0, len(doc.Chats))
	for _, chat := range doc.Chats {
		out = append(out, dto.AdminChatResponse{
			ID:             chat.ID,
			ProfileID:      chat.ProfileID,
			ProfileName:    chat.ProfileName,
			ExternalUserID: chat.ExternalUserID,
			UnreadCount:    h.service.UnreadCount(doc, chat.ID),
			CreatedAt:      chat.CreatedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, dto.AdminChatListResponse{Chats: out})
}

func (h *AdminChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	chatID, err := urlParamInt64(r, "chatID")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid chat id")
		return
	}

	doc := h.store.Load()
	if doc.ChatByID(chatID) == nil {
		writeNotFound(w, "CHAT_NOT_FOUND", "chat not found")
		return
	}

	messages := h.service.MessagesForChat(doc, chatID)
	httperrors.Write(w, http.StatusOK, dto.MessageListResponse{Messages: mapMessages(messages)})
}

// Reply appends an operator message to a chat. A reply containing the
// payment confirmation phrase books the pending order as a side effect.
func (h *AdminChatHandler) Reply(w http.ResponseWriter, r *http.Request) {
	chatID, err := urlParamInt64(r, "chatID")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid chat id")
		return
	}

	var req dto.AdminReplyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid reply body")
		return
	}

	var saved *model.Message
	_, err = h.store.Update(func(doc *model.Document) error {
		chat := doc.ChatByID(chatID)
		if chat == nil {
			return chatsvc.ErrChatNotFound
		}
		msg, appendErr := h.service.AppendMessage(doc, chatsvc.AppendInput{
			ProfileID:      chat.ProfileID,
			ExternalUserID: chat.ExternalUserID,
			FromUser:       false,
			Text:           req.Text,
		})
		if appendErr != nil {
			return appendErr
		}
		saved = msg
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, chatsvc.ErrChatNotFound):
			writeNotFound(w, "CHAT_NOT_FOUND", "chat not found")
		case errors.Is(err, chatsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "reply text is required")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to save reply")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, mapMessage(*saved))
}

// MarkRead flags all user messages in a chat as seen by the operators.
func (h *AdminChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	chatID, err := urlParamInt64(r, "chatID")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid chat id")
		return
	}

	marked := 0
	_, err = h.store.Update(func(doc *model.Document) error {
		var markErr error
		marked, markErr = h.service.MarkRead(doc, chatID)
		if markErr != nil {
			return markErr
		}
		if marked == 0 {
			return store.ErrNoChanges
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, chatsvc.ErrChatNotFound) {
			writeNotFound(w, "CHAT_NOT_FOUND", "chat not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to mark chat read")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MarkReadResponse{Marked: marked})
}
