package request

import (
	"github.com/shopspring/decimal"
)

// Product is the mutation payload for both create and update. Every field is
// an optional slot so partial updates can tell "absent" apart from "zero";
// full validation is what makes the create fields required.
type Product struct {
	Name        *string          `json:"name"`
	Slug        *string          `json:"slug"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Inventory   *decimal.Decimal `json:"inventory"`
	Image       *string          `json:"image"`
}
