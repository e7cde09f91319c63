package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ivankudzin/muji/internal/domain/model"
	authsvc "github.com/ivankudzin/muji/internal/services/auth"
	"github.com/ivankudzin/muji/internal/services/attachments"
	chatsvc "github.com/ivankudzin/muji/internal/services/chats"
	"github.com/ivankudzin/muji/internal/store"
	"github.com/ivankudzin/muji/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/muji/internal/transport/http/errors"
)

const maxUploadBytes = 32 << 20

type ChatHandler struct {
	store    *store.Store
	service  *chatsvc.Service
	uploads  *attachments.Storage
	notifier Notifier
	logger   *zap.Logger
}

func NewChatHandler(st *store.Store, service *chatsvc.Service, uploads *attachments.Storage, notifier Notifier, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{store: st, service: service, uploads: uploads, notifier: notifier, logger: logger}
}

// Messages returns the full history for the caller's chat with a profile,
// creating the chat on first contact.
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	profileID, err := urlParamInt64(r, "profileID")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile id")
		return
	}

	var messages []model.Message
	_, err = h.store.Update(func(doc *model.Document) error {
		existed := chatExists(doc, profileID, identity.ExternalUserID)
		chat, findErr := h.service.FindOrCreate(doc, profileID, identity.ExternalUserID)
		if findErr != nil {
			return findErr
		}
		messages = h.service.MessagesForChat(doc, chat.ID)
		if existed {
			return store.ErrNoChanges
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, chatsvc.ErrProfileNotFound) {
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load messages")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MessageListResponse{Messages: mapMessages(messages)})
}

// Send appends a user message. Accepts JSON with text or multipart form
// data with an optional file attachment.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	profileID, err := urlParamInt64(r, "profileID")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile id")
		return
	}

	input := chatsvc.AppendInput{
		ProfileID:      profileID,
		ExternalUserID: identity.ExternalUserID,
		FromUser:       true,
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
			return
		}
		input.Text = r.FormValue("text")

		file, header, formErr := r.FormFile("file")
		if formErr == nil {
			defer file.Close()
			if h.uploads == nil {
				writeInternal(w, "UPLOADS_UNAVAILABLE", "attachment storage is unavailable")
				return
			}
			url, putErr := h.uploads.Put(r.Context(), header.Filename, file, header.Size, header.Header.Get("Content-Type"))
			if putErr != nil {
				h.logger.Error("attachment upload failed", zap.Error(putErr))
				writeInternal(w, "UPLOAD_FAILED", "failed to store attachment")
				return
			}
			input.FileURL = url
			input.FileName = header.Filename
		}
	} else {
		var req dto.SendMessageRequest
		if err := decodeJSON(r, &req); err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid message body")
			return
		}
		input.Text = req.Text
	}

	var (
		saved       *model.Message
		profileName string
	)
	_, err = h.store.Update(func(doc *model.Document) error {
		msg, appendErr := h.service.AppendMessage(doc, input)
		if appendErr != nil {
			return appendErr
		}
		saved = msg
		if profile := doc.ProfileByID(profileID); profile != nil {
			profileName = profile.Name
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, chatsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "message text or file is required")
		case errors.Is(err, chatsvc.ErrProfileNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to save message")
		}
		return
	}

	if h.notifier != nil {
		preview := saved.Text
		if preview == "" {
			preview = saved.FileName
		}
		h.notifier.NotifyNewMessage(r.Context(), profileID, profileName, identity.ExternalUserID, preview)
	}

	httperrors.Write(w, http.StatusCreated, mapMessage(*saved))
}

// Updates returns messages appended after last_message_id for polling
// clients.
func (h *ChatHandler) Updates(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	profileID, err := urlParamInt64(r, "profileID")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile id")
		return
	}

	lastID := int64(0)
	if raw := r.URL.Query().Get("last_message_id"); raw != "" {
		parsed, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil || parsed < 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid last_message_id")
			return
		}
		lastID = parsed
	}

	doc := h.store.Load()
	chat := findChat(doc, profileID, identity.ExternalUserID)
	if chat == nil {
		httperrors.Write(w, http.StatusOK, dto.UpdatesResponse{Messages: []dto.MessageResponse{}, LastID: 0})
		return
	}

	messages, newLastID := h.service.MessagesSince(doc, chat.ID, lastID)
	httperrors.Write(w, http.StatusOK, dto.UpdatesResponse{Messages: mapMessages(messages), LastID: newLastID})
}

// MarkRead advances the caller's read pointer for one chat.
func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	profileID, err := urlParamInt64(r, "profileID")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile id")
		return
	}

	_, err = h.store.Update(func(doc *model.Document) error {
		chat := findChat(doc, profileID, identity.ExternalUserID)
		if chat == nil {
			return store.ErrNoChanges
		}
		return h.service.MarkReadByUser(doc, chat.ID)
	})
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to mark chat read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UserChats lists the caller's conversations, newest activity first.
func (h *ChatHandler) UserChats(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	doc := h.store.Load()
	summaries := h.service.ListForUser(doc, identity.ExternalUserID)

	out := make([]dto.ChatSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, mapChatSummary(s))
	}
	httperrors.Write(w, http.StatusOK, dto.ChatListResponse{Chats: out})
}

func chatExists(doc *model.Document, profileID int64, externalUserID string) bool {
	return findChat(doc, profileID, externalUserID) != nil
}

func findChat(doc *model.Document, profileID int64, externalUserID string) *model.Chat {
	for i := range doc.Chats {
		chat := &doc.Chats[i]
		if chat.ProfileID == profileID && chat.ExternalUserID == externalUserID {
			return chat
		}
	}
	return nil
}
