package model

const DefaultBonusPercentage = 5

type Settings struct {
	App             AppSettings       `json:"app"`
	CryptoWallets   map[string]string `json:"crypto_wallets"`
	BonusPercentage float64           `json:"bonus_percentage"`
	Banner          Banner            `json:"banner"`
}

type AppSettings struct {
	Name        string `json:"app_name"`
	DefaultAge  int    `json:"default_age"`
	DefaultCity string `json:"default_city"`
}

type Banner struct {
	Text     string `json:"text"`
	Link     string `json:"link"`
	LinkText string `json:"link_text"`
	Visible  bool   `json:"visible"`
}

func defaultSettings() Settings {
	return Settings{
		App: AppSettings{
			Name:        "Muji",
			DefaultAge:  25,
			DefaultCity: "Moscow",
		},
		CryptoWallets: map[string]string{
			"trc20": "",
			"erc20": "",
			"bnb":   "",
		},
		BonusPercentage: DefaultBonusPercentage,
		Banner:          Banner{},
	}
}
