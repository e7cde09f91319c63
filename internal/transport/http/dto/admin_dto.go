package dto

import "time"

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AdminChatResponse struct {
	ID             int64     `json:"id"`
	ProfileID      int64     `json:"profile_id"`
	ProfileName    string    `json:"profile_name"`
	ExternalUserID string    `json:"external_user_id,omitempty"`
	UnreadCount    int       `json:"unread_count"`
	CreatedAt      time.Time `json:"created_at"`
}

type AdminChatListResponse struct {
	Chats []AdminChatResponse `json:"chats"`
}

type AdminReplyRequest struct {
	Text string `json:"text"`
}

type MarkReadResponse struct {
	Marked int `json:"marked"`
}

type StatsResponse struct {
	Profiles     int     `json:"profiles"`
	Chats        int     `json:"chats"`
	Messages     int     `json:"messages"`
	UnpaidOrders int     `json:"unpaid_orders"`
	BookedOrders int     `json:"booked_orders"`
	BookedTotal  float64 `json:"booked_total"`
}
