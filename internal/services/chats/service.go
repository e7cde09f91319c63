package chats

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/muji/internal/domain/enums"
	"github.com/ivankudzin/muji/internal/domain/model"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrProfileNotFound = errors.New("profile not found")
	ErrChatNotFound    = errors.New("chat not found")
)

// paymentConfirmKeyword in an admin reply books the matching order.
const paymentConfirmKeyword = "payment successful"

// Booker books the latest unpaid order for a (profile, external user)
// pair. Implemented by the order ledger.
type Booker interface {
	Book(doc *model.Document, profileID int64, externalUserID string) (*model.Order, bool)
}

// Service resolves chat identities and appends messages. Like the order
// ledger it only mutates the in-memory document; every mutating call is
// expected to be followed by a single store save.
type Service struct {
	booker Booker
	now    func() time.Time
	logger *zap.Logger
}

func NewService(booker Booker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		booker: booker,
		now:    time.Now,
		logger: logger,
	}
}

// FindOrCreate resolves the chat for a (profile, external user) pair,
// creating it lazily on first contact. A known externalUserID matches
// its own pair exactly and never another user's chat. Only an empty
// externalUserID, an operator acting without a user identity, falls
// back to the profile's latest chat.
func (s *Service) FindOrCreate(doc *model.Document, profileID int64, externalUserID string) (*model.Chat, error) {
	profile := doc.ProfileByID(profileID)
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	var fallback *model.Chat
	for i := range doc.Chats {
		c := &doc.Chats[i]
		if c.ProfileID != profileID {
			continue
		}
		if c.ExternalUserID == externalUserID {
			return c, nil
		}
		if externalUserID == "" {
			fallback = c
		}
	}
	if fallback != nil {
		return fallback, nil
	}

	chat := model.Chat{
		ID:             doc.NextChatID(),
		ProfileID:      profileID,
		ProfileName:    profile.Name,
		ExternalUserID: externalUserID,
		CreatedAt:      s.now(),
	}
	doc.Chats = append(doc.Chats, chat)

	s.logger.Info("chat created",
		zap.Int64("chat_id", chat.ID),
		zap.Int64("profile_id", profileID),
		zap.String("external_user_id", externalUserID),
	)
	return &doc.Chats[len(doc.Chats)-1], nil
}

type AppendInput struct {
	ProfileID      int64
	ExternalUserID string
	FromUser       bool
	Text           string
	FileURL        string
	FileName       string
}

// AppendMessage allocates the next global message id and appends the
// message to the pair's chat. An admin-authored reply containing
// "payment successful" (case-insensitive) books the matching unpaid order
// and records a system confirmation in the same chat.
func (s *Service) AppendMessage(doc *model.Document, in AppendInput) (*model.Message, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" && strings.TrimSpace(in.FileURL) == "" {
		return nil, ErrValidation
	}

	chat, err := s.FindOrCreate(doc, in.ProfileID, in.ExternalUserID)
	if err != nil {
		return nil, err
	}
	chatID := chat.ID

	msg := model.Message{
		ID:        doc.NextMessageID(),
		ChatID:    chatID,
		FromUser:  in.FromUser,
		Text:      text,
		CreatedAt: s.now(),
	}
	if fileURL := strings.TrimSpace(in.FileURL); fileURL != "" {
		msg.FileURL = fileURL
		msg.FileName = in.FileName
		msg.FileKind = enums.FileKindFor(in.FileName)
	}
	doc.Messages = append(doc.Messages, msg)
	idx := len(doc.Messages) - 1

	if !in.FromUser && strings.Contains(strings.ToLower(text), paymentConfirmKeyword) {
		if s.booker == nil {
			s.logger.Warn("payment confirmation received but no booker attached", zap.Int64("chat_id", chatID))
		} else if order, ok := s.booker.Book(doc, in.ProfileID, in.ExternalUserID); ok {
			doc.Messages = append(doc.Messages, model.Message{
				ID:        doc.NextMessageID(),
				ChatID:    chatID,
				System:    true,
				Text:      fmt.Sprintf("Payment confirmed. Order %s is booked.", order.Code),
				CreatedAt: s.now(),
			})
		}
	}

	return &doc.Messages[idx], nil
}

// MarkRead flags every user-authored message in the chat as read and
// returns how many changed. The admin UI unread counter consumes this.
func (s *Service) MarkRead(doc *model.Document, chatID int64) (int, error) {
	if doc.ChatByID(chatID) == nil {
		return 0, ErrChatNotFound
	}

	updated := 0
	for i := range doc.Messages {
		m := &doc.Messages[i]
		if m.ChatID != chatID || !m.FromUser || m.IsRead {
			continue
		}
		m.IsRead = true
		updated++
	}
	return updated, nil
}

// MarkReadByUser advances the user-side read cursor to the newest message
// in the chat.
func (s *Service) MarkReadByUser(doc *model.Document, chatID int64) error {
	chat := doc.ChatByID(chatID)
	if chat == nil {
		return ErrChatNotFound
	}

	for _, m := range doc.Messages {
		if m.ChatID == chatID && m.ID > chat.LastReadMessageID {
			chat.LastReadMessageID = m.ID
		}
	}
	return nil
}

// UnreadCount counts user-authored messages not yet read by the admin.
func (s *Service) UnreadCount(doc *model.Document, chatID int64) int {
	count := 0
	for _, m := range doc.Messages {
		if m.ChatID == chatID && m.FromUser && !m.IsRead {
			count++
		}
	}
	return count
}

func (s *Service) MessagesForChat(doc *model.Document, chatID int64) []model.Message {
	out := make([]model.Message, 0)
	for _, m := range doc.Messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// MessagesSince returns messages newer than lastID plus the current global
// high-water mark, for user-side polling.
func (s *Service) MessagesSince(doc *model.Document, chatID, lastID int64) ([]model.Message, int64) {
	out := make([]model.Message, 0)
	var maxID int64
	for _, m := range doc.Messages {
		if m.ID > maxID {
			maxID = m.ID
		}
		if m.ChatID == chatID && m.ID > lastID {
			out = append(out, m)
		}
	}
	return out, maxID
}

type ChatSummary struct {
	ChatID          int64
	ProfileID       int64
	ProfileName     string
	ProfilePhoto    string
	LastMessage     string
	LastMessageTime time.Time
	UnreadCount     int
}

// ListForUser builds the user's chat list, newest activity first.
func (s *Service) ListForUser(doc *model.Document, externalUserID string) []ChatSummary {
	out := make([]ChatSummary, 0)
	for _, chat := range doc.Chats {
		if chat.ExternalUserID != externalUserID {
			continue
		}
		profile := doc.ProfileByID(chat.ProfileID)
		if profile == nil {
			continue
		}

		summary := ChatSummary{
			ChatID:          chat.ID,
			ProfileID:       chat.ProfileID,
			ProfileName:     profile.Name,
			LastMessageTime: chat.CreatedAt,
		}
		if len(profile.Photos) > 0 {
			summary.ProfilePhoto = profile.Photos[0]
		}

		for _, m := range doc.Messages {
			if m.ChatID != chat.ID {
				continue
			}
			if !m.CreatedAt.Before(summary.LastMessageTime) {
				summary.LastMessage = previewText(m)
				summary.LastMessageTime = m.CreatedAt
			}
			if !m.FromUser && !m.System && m.ID > chat.LastReadMessageID {
				summary.UnreadCount++
			}
		}
		if summary.LastMessage == "" {
			summary.LastMessage = "No messages yet"
		}

		out = append(out, summary)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessageTime.After(out[j].LastMessageTime)
	})
	return out
}

func previewText(m model.Message) string {
	if m.FileURL != "" {
		switch m.FileKind {
		case enums.FileKindImage:
			return "Image"
		case enums.FileKindVideo:
			return "Video"
		default:
			return "File"
		}
	}
	return m.Text
}
