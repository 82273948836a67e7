package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Prices go over the wire as JSON numbers, not quoted strings. Unmarshal
// accepts both forms, so cached payloads written before this setting still
// decode.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Inventory   int             `json:"inventory"`
	Image       string          `json:"image"`
	LastUpdated time.Time       `json:"lastUpdated"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProductList pairs one page of products with the total the filter matches,
// counted independently of the page window.
type ProductList struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

type InventoryStats struct {
	TotalProducts  int64            `json:"totalProducts"`
	TotalInventory int64            `json:"totalInventory"`
	LowStock       int64            `json:"lowStock"`
	OutOfStock     int64            `json:"outOfStock"`
	Categories     map[string]int64 `json:"categories"`
}
