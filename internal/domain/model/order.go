package model

import (
	"time"

	"github.com/ivankudzin/muji/internal/domain/enums"
)

// Order is a payment request for a profile. Code is a human-readable
// display label, not a security token. An unpaid order expires one hour
// after it was created (or last re-quoted).
type Order struct {
	ID             int64             `json:"id"`
	Code           string            `json:"order_number"`
	ProfileID      int64             `json:"profile_id"`
	ExternalUserID string            `json:"external_user_id,omitempty"`
	Amount         float64           `json:"amount"`
	BonusAmount    float64           `json:"bonus_amount"`
	TotalAmount    float64           `json:"total_amount"`
	WalletType     string            `json:"crypto_type"`
	Currency       string            `json:"currency"`
	Status         enums.OrderStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	ExpiresAt      time.Time         `json:"expires_at"`
	BookedAt       *time.Time        `json:"booked_at,omitempty"`
}
