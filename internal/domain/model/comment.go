package model

import "time"

type Comment struct {
	ID        int64     `json:"id"`
	ProfileID int64     `json:"profile_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
