package dto

type BannerResponse struct {
	Text     string `json:"text"`
	Link     string `json:"link"`
	LinkText string `json:"link_text"`
	Visible  bool   `json:"visible"`
}

type AppSettingsResponse struct {
	Name            string  `json:"app_name"`
	BonusPercentage float64 `json:"bonus_percentage"`
}

type WalletsResponse struct {
	Wallets map[string]string `json:"wallets"`
}

type UpdateWalletsRequest struct {
	Wallets map[string]string `json:"wallets"`
}

type UpdateBannerRequest struct {
	Text     string `json:"text"`
	Link     string `json:"link"`
	LinkText string `json:"link_text"`
	Visible  bool   `json:"visible"`
}

type UpdateBonusRequest struct {
	Percentage float64 `json:"percentage"`
}

type ValidatePromocodeRequest struct {
	Code string `json:"code"`
}

type PromocodeResponse struct {
	Code     string  `json:"code"`
	Discount float64 `json:"discount"`
	IsActive bool    `json:"is_active"`
}
