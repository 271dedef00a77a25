package entity

import "github.com/shopspring/decimal"

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	StockQuantity int             `json:"stockQuantity"`
	MainImageURL  string          `json:"mainImageUrl,omitempty"`
	Rating        float64         `json:"rating"`
	IsPopular     bool            `json:"isPopular"`
	CreatedAt     Timestamp       `json:"createdAt"`
}

func (p Product) InStock() bool {
	return p.StockQuantity > 0
}

// ProductInput is the admin form payload sent as the "product" multipart part.
type ProductInput struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	StockQuantity int             `json:"stockQuantity"`
	IsPopular     bool            `json:"isPopular"`
}

// ImageUpload is one file of the admin product form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
