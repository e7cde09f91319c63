package settings

import (
	"errors"
	"strings"

	"github.com/ivankudzin/muji/internal/domain/model"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrPromocodeNotFound = errors.New("promocode not found")
	ErrPromocodeInactive = errors.New("promocode is inactive")
)

// Service mutates the settings singleton. Admin-only; reads go straight
// off the loaded document.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) UpdateWallets(doc *model.Document, wallets map[string]string) error {
	if len(wallets) == 0 {
		return ErrValidation
	}
	for kind, address := range wallets {
		kind = strings.ToLower(strings.TrimSpace(kind))
		if kind == "" {
			return ErrValidation
		}
		doc.Settings.CryptoWallets[kind] = strings.TrimSpace(address)
	}
	return nil
}

func (s *Service) UpdateBanner(doc *model.Document, banner model.Banner) {
	doc.Settings.Banner = banner
}

func (s *Service) UpdateBonusPercentage(doc *model.Document, percentage float64) error {
	if percentage < 0 || percentage > 100 {
		return ErrValidation
	}
	doc.Settings.BonusPercentage = percentage
	return nil
}

// ValidatePromocode is a read-only check; promocode management itself
// lives outside this service.
func (s *Service) ValidatePromocode(doc *model.Document, code string) (model.Promocode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return model.Promocode{}, ErrValidation
	}

	for _, p := range doc.Promocodes {
		if !strings.EqualFold(p.Code, code) {
			continue
		}
		if !p.IsActive {
			return model.Promocode{}, ErrPromocodeInactive
		}
		return p, nil
	}
	return model.Promocode{}, ErrPromocodeNotFound
}
