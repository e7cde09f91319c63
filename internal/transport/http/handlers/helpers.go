package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/muji/internal/domain/model"
	chatsvc "github.com/ivankudzin/muji/internal/services/chats"
	httperrors "github.com/ivankudzin/muji/internal/transport/http/errors"
	"github.com/ivankudzin/muji/internal/transport/http/dto"
)

const maxBodyBytes = 1 << 20

// Notifier pushes new user messages to the operators. Implemented by the
// Telegram bridge; nil-safe wrappers let the API run without a bot.
type Notifier interface {
	NotifyNewMessage(ctx context.Context, profileID int64, profileName, externalUserID, preview string)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeConflict(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func urlParamInt64(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

func mapProfile(p model.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:          p.ID,
		Name:        p.Name,
		Age:         p.Age,
		Gender:      p.Gender,
		City:        p.City,
		Description: p.Description,
		Photos:      p.Photos,
		Visible:     p.Visible,
		CreatedAt:   p.CreatedAt,
	}
}

func mapComment(c model.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        c.ID,
		ProfileID: c.ProfileID,
		Author:    c.Author,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

func mapMessage(m model.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:        m.ID,
		ChatID:    m.ChatID,
		FromUser:  m.FromUser,
		System:    m.System,
		Text:      m.Text,
		FileURL:   m.FileURL,
		FileKind:  string(m.FileKind),
		FileName:  m.FileName,
		CreatedAt: m.CreatedAt,
	}
}

func mapMessages(messages []model.Message) []dto.MessageResponse {
	out := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, mapMessage(m))
	}
	return out
}

func mapOrder(o model.Order, walletAddress string) dto.OrderResponse {
	return dto.OrderResponse{
		ID:            o.ID,
		Code:          o.Code,
		ProfileID:     o.ProfileID,
		Amount:        o.Amount,
		BonusAmount:   o.BonusAmount,
		TotalAmount:   o.TotalAmount,
		WalletType:    o.WalletType,
		WalletAddress: walletAddress,
		Currency:      o.Currency,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
		ExpiresAt:     o.ExpiresAt,
		BookedAt:      o.BookedAt,
	}
}

func mapChatSummary(s chatsvc.ChatSummary) dto.ChatSummaryResponse {
	return dto.ChatSummaryResponse{
		ChatID:          s.ChatID,
		ProfileID:       s.ProfileID,
		ProfileName:     s.ProfileName,
		ProfilePhoto:    s.ProfilePhoto,
		LastMessage:     s.LastMessage,
		LastMessageTime: s.LastMessageTime,
		UnreadCount:     s.UnreadCount,
	}
}
