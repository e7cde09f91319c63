package dto

type TelegramAuthRequest struct {
	InitData string `json:"init_data"`
}

type AuthUserResponse struct {
	ExternalUserID string `json:"external_user_id"`
	Username       string `json:"username,omitempty"`
	FirstName      string `json:"first_name,omitempty"`
}
