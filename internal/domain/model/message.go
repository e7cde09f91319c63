package model

import (
	"time"

	"github.com/ivankudzin/muji/internal/domain/enums"
)

// Message ids are global across all chats, not per-chat.
// IsRead is meaningful only for user-authored messages; the admin UI
// unread counter consumes it.
type Message struct {
	ID        int64          `json:"id"`
	ChatID    int64          `json:"chat_id"`
	FromUser  bool           `json:"is_from_user"`
	System    bool           `json:"is_system,omitempty"`
	Text      string         `json:"text"`
	FileURL   string         `json:"file_url,omitempty"`
	FileKind  enums.FileKind `json:"file_type,omitempty"`
	FileName  string         `json:"file_name,omitempty"`
	IsRead    bool           `json:"is_read,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
