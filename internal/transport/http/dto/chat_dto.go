package dto

import "time"

type MessageResponse struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	FromUser  bool      `json:"is_from_user"`
	System    bool      `json:"is_system"`
	Text      string    `json:"text,omitempty"`
	FileURL   string    `json:"file_url,omitempty"`
	FileKind  string    `json:"file_type,omitempty"`
	FileName  string    `json:"file_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
}

type UpdatesResponse struct {
	Messages []MessageResponse `json:"messages"`
	LastID   int64             `json:"last_id"`
}

type ChatSummaryResponse struct {
	ChatID          int64     `json:"chat_id"`
	ProfileID       int64     `json:"profile_id"`
	ProfileName     string    `json:"profile_name"`
	ProfilePhoto    string    `json:"profile_photo,omitempty"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	UnreadCount     int       `json:"unread_count"`
}

type ChatListResponse struct {
	Chats []ChatSummaryResponse `json:"chats"`
}
