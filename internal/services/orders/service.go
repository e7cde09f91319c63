package orders

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/muji/internal/domain/enums"
	"github.com/ivankudzin/muji/internal/domain/model"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrProfileNotFound = errors.New("profile not found")
	ErrOrderNotFound   = errors.New("order not found")
)

const (
	paymentWindow = time.Hour

	codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 18
)

// Service is the unpaid -> booked state machine over Document.Orders.
// Every method is a pure transformation of the in-memory document;
// persisting the result is the caller's job.
type Service struct {
	now    func() time.Time
	logger *zap.Logger
}

func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		now:    time.Now,
		logger: logger,
	}
}

type QuoteInput struct {
	ProfileID      int64
	ExternalUserID string
	Amount         float64
	WalletType     string
	Currency       string
}

// Quote creates or refreshes the single unpaid order for a
// (profile, external user) pair. A repeated payment attempt updates the
// existing unpaid order in place and extends its payment window instead of
// creating a duplicate.
func (s *Service) Quote(doc *model.Document, in QuoteInput) (*model.Order, error) {
	if in.ProfileID <= 0 || in.Amount <= 0 {
		return nil, ErrValidation
	}
	if doc.ProfileByID(in.ProfileID) == nil {
		return nil, ErrProfileNotFound
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}
	wallet := strings.ToLower(strings.TrimSpace(in.WalletType))

	now := s.now()
	bonus := in.Amount * doc.Settings.BonusPercentage / 100
	total := in.Amount + bonus

	for i := range doc.Orders {
		o := &doc.Orders[i]
		if o.ProfileID != in.ProfileID || o.Status != enums.OrderStatusUnpaid {
			continue
		}
		if o.ExternalUserID != in.ExternalUserID {
			continue
		}

		o.Amount = in.Amount
		o.BonusAmount = bonus
		o.TotalAmount = total
		o.WalletType = wallet
		o.Currency = currency
		o.ExpiresAt = now.Add(paymentWindow)

		s.logger.Info("payment order updated",
			zap.Int64("order_id", o.ID),
			zap.Int64("profile_id", o.ProfileID),
			zap.Float64("total", o.TotalAmount),
		)
		return o, nil
	}

	order := model.Order{
		ID:             doc.NextOrderID(),
		Code:           newOrderCode(),
		ProfileID:      in.ProfileID,
		ExternalUserID: in.ExternalUserID,
		Amount:         in.Amount,
		BonusAmount:    bonus,
		TotalAmount:    total,
		WalletType:     wallet,
		Currency:       currency,
		Status:         enums.OrderStatusUnpaid,
		CreatedAt:      now,
		ExpiresAt:      now.Add(paymentWindow),
	}
	doc.Orders = append(doc.Orders, order)

	s.logger.Info("payment order created",
		zap.Int64("order_id", order.ID),
		zap.String("code", order.Code),
		zap.Int64("profile_id", order.ProfileID),
		zap.Float64("total", order.TotalAmount),
	)
	return &doc.Orders[len(doc.Orders)-1], nil
}

// Book transitions the most recent matching unpaid order to booked. An
// empty externalUserID books the latest unpaid order for the profile; the
// admin confirmation path uses this when the operator has no user id.
func (s *Service) Book(doc *model.Document, profileID int64, externalUserID string) (*model.Order, bool) {
	match := -1
	for i := range doc.Orders {
		o := &doc.Orders[i]
		if o.ProfileID != profileID || o.Status != enums.OrderStatusUnpaid {
			continue
		}
		if externalUserID != "" && o.ExternalUserID != externalUserID {
			continue
		}
		// Orders append in creation order, so the last match is the most
		// recently created one.
		match = i
	}
	if match < 0 {
		return nil, false
	}

	o := &doc.Orders[match]
	bookedAt := s.now()
	o.Status = enums.OrderStatusBooked
	o.BookedAt = &bookedAt

	s.logger.Info("order booked",
		zap.Int64("order_id", o.ID),
		zap.Int64("profile_id", o.ProfileID),
		zap.String("external_user_id", o.ExternalUserID),
	)
	return o, true
}

// Sweep deletes every order that is still unpaid past its expiry.
func (s *Service) Sweep(doc *model.Document, now time.Time) int {
	kept := doc.Orders[:0]
	removed := 0
	for _, o := range doc.Orders {
		if o.Status == enums.OrderStatusUnpaid && o.ExpiresAt.Before(now) {
			removed++
			continue
		}
		kept = append(kept, o)
	}
	doc.Orders = kept
	return removed
}

func (s *Service) ListForUser(doc *model.Document, externalUserID string, status enums.OrderStatus) []model.Order {
	out := make([]model.Order, 0)
	for _, o := range doc.Orders {
		if o.ExternalUserID != externalUserID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Delete removes the user's own order. Orders belonging to other users are
// reported as not found rather than forbidden.
func (s *Service) Delete(doc *model.Document, orderID int64, externalUserID string) error {
	for i := range doc.Orders {
		o := doc.Orders[i]
		if o.ID != orderID || o.ExternalUserID != externalUserID {
			continue
		}
		doc.Orders = append(doc.Orders[:i], doc.Orders[i+1:]...)
		return nil
	}
	return ErrOrderNotFound
}

func newOrderCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}
