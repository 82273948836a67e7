package response

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductMarshalsPriceAsNumber(t *testing.T) {
	product := Product{
		Name:  "Wireless Headphones",
		Slug:  "wireless-headphones",
		Price: decimal.RequireFromString("29.99"),
	}

	body, err := json.Marshal(product)
	require.NoError(t, err)

	assert.Contains(t, string(body), `"price":29.99`)
	assert.NotContains(t, string(body), `"price":"29.99"`)
}

func TestProductPriceRoundTrip(t *testing.T) {
	product := Product{Price: decimal.RequireFromString("19.90")}

	body, err := json.Marshal(product)
	require.NoError(t, err)

	var decoded Product
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.True(t, decoded.Price.Equal(product.Price))
}
