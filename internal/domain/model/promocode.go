package model

type Promocode struct {
	Code     string  `json:"code"`
	Discount float64 `json:"discount"`
	IsActive bool    `json:"is_active"`
}
