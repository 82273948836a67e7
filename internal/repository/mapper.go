package repository

import (
	"github.com/shopspring/decimal"

	productResponse "github.com/widyatma/catalog/product/pkg/response"
)

func (p Product) Response() productResponse.Product {
	return productResponse.Product{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       decimal.NewFromBigInt(p.Price.Int, p.Price.Exp),
		Category:    p.Category,
		Inventory:   int(p.Inventory),
		Image:       p.Image,
		LastUpdated: p.LastUpdated.Time,
		CreatedAt:   p.CreatedAt.Time,
		UpdatedAt:   p.UpdatedAt.Time,
	}
}
