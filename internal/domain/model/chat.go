package model

import "time"

// Chat scopes a conversation to one (profile, external user) pair.
// ExternalUserID is empty on legacy chats created before user isolation;
// those are matched by profile id alone.
type Chat struct {
	ID                int64     `json:"id"`
	ProfileID         int64     `json:"profile_id"`
	ProfileName       string    `json:"profile_name"`
	ExternalUserID    string    `json:"external_user_id,omitempty"`
	LastReadMessageID int64     `json:"last_read_message_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
