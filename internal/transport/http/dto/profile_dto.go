package dto

import "time"

type ProfileResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	Gender      string    `json:"gender"`
	City        string    `json:"city"`
	Description string    `json:"description"`
	Photos      []string  `json:"photos"`
	Visible     bool      `json:"visible"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateProfileRequest struct {
	Name        string   `json:"name"`
	Age         int      `json:"age"`
	Gender      string   `json:"gender"`
	City        string   `json:"city"`
	Description string   `json:"description"`
	Photos      []string `json:"photos"`
}

type ProfileListResponse struct {
	Profiles []ProfileResponse `json:"profiles"`
}

type CommentResponse struct {
	ID        int64     `json:"id"`
	ProfileID int64     `json:"profile_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type AddCommentRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}
