package dto

import "time"

type QuoteRequest struct {
	ProfileID  int64   `json:"profile_id"`
	Amount     float64 `json:"amount"`
	WalletType string  `json:"crypto_type"`
	Currency   string  `json:"currency"`
}

type OrderResponse struct {
	ID             int64      `json:"id"`
	Code           string     `json:"order_number"`
	ProfileID      int64      `json:"profile_id"`
	Amount         float64    `json:"amount"`
	BonusAmount    float64    `json:"bonus_amount"`
	TotalAmount    float64    `json:"total_amount"`
	WalletType     string     `json:"crypto_type"`
	WalletAddress  string     `json:"wallet_address,omitempty"`
	Currency       string     `json:"currency"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	BookedAt       *time.Time `json:"booked_at,omitempty"`
	ExternalUserID string     `json:"external_user_id,omitempty"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
}
