package models

// LocalizedText is an embedded name/description pair for one locale.
type LocalizedText struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Course is a catalog entry. Prices are integer minor units (cents,
// kopecks) per currency. FileID references the hosted content file the
// buyer is granted access to.
type Course struct {
	BaseModel
	En LocalizedText `gorm:"embedded;embeddedPrefix:en_" json:"en"`
	Ua LocalizedText `gorm:"embedded;embeddedPrefix:ua_" json:"ua"`

	PriceUSD int64 `gorm:"not null;check:price_usd >= 0" json:"priceUsd"`
	PriceUAH int64 `gorm:"not null;check:price_uah >= 0" json:"priceUah"`
	PriceEUR int64 `gorm:"not null;check:price_eur >= 0" json:"priceEur"`

	Duration   int    `gorm:"not null" json:"duration"` // hours
	Difficulty int    `gorm:"not null" json:"difficulty"`
	FileID     string `gorm:"not null" json:"fileId"`
	CoverImage string `json:"coverImage,omitempty"`
}

// PriceIn returns the price in minor units for a currency code
// ("usd", "uah", "eur"). Unknown currencies return ok=false.
func (c *Course) PriceIn(currency string) (int64, bool) {
	switch currency {
	case "usd":
		return c.PriceUSD, true
	case "uah":
		return c.PriceUAH, true
	case "eur":
		return c.PriceEUR, true
	default:
		return 0, false
	}
}
