package validation

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/widyatma/catalog/product/pkg/request"
)

func strPtr(s string) *string {
	return &s
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validProduct() request.Product {
	return request.Product{
		Name:        strPtr("Wireless Headphones"),
		Slug:        strPtr("wireless-headphones"),
		Description: strPtr("Noise cancelling over-ear headphones"),
		Price:       decPtr("29.99"),
		Category:    strPtr("Electronics"),
		Inventory:   decPtr("10"),
	}
}

func TestValidateProduct_Valid(t *testing.T) {
	assert.Empty(t, ValidateProduct(validProduct()))
}

func TestValidateProduct_RequiredFields(t *testing.T) {
	errs := ValidateProduct(request.Product{})

	assert.Len(t, errs, 6)
	byField := map[string]string{}
	for _, e := range errs {
		byField[e.Field] = e.Message
	}
	assert.Equal(t, "Name is required", byField["name"])
	assert.Equal(t, "Slug is required", byField["slug"])
	assert.Equal(t, "Description is required", byField["description"])
	assert.Equal(t, "Price is required", byField["price"])
	assert.Equal(t, "Category is required", byField["category"])
	assert.Equal(t, "Inventory is required", byField["inventory"])
}

func TestValidateProduct_Name(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "too short", value: "ab", expected: "Name must be at least 3 characters"},
		{name: "whitespace padding does not count", value: "  a  ", expected: "Name must be at least 3 characters"},
		{name: "two multibyte characters are too short", value: "日本", expected: "Name must be at least 3 characters"},
		{name: "too long", value: strings.Repeat("a", 101), expected: "Name must not exceed 100 characters"},
		{name: "101 multibyte characters are too long", value: strings.Repeat("日", 101), expected: "Name must not exceed 100 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := validProduct()
			product.Name = &tt.value

			errs := ValidateProduct(product)

			assert.Len(t, errs, 1)
			assert.Equal(t, "name", errs[0].Field)
			assert.Equal(t, tt.expected, errs[0].Message)
		})
	}
}

func TestValidateProduct_LengthCountsCharacters(t *testing.T) {
	// Multibyte runes count once, so 100 of them fit the name bound and 9 of
	// them miss the description minimum.
	product := validProduct()
	product.Name = strPtr(strings.Repeat("日", 100))
	assert.Empty(t, ValidateProduct(product))

	product = validProduct()
	product.Description = strPtr(strings.Repeat("日", 9))

	errs := ValidateProduct(product)

	assert.Len(t, errs, 1)
	assert.Equal(t, "description", errs[0].Field)
	assert.Equal(t, "Description must be at least 10 characters", errs[0].Message)
}

func TestValidateProduct_Slug(t *testing.T) {
	valid := []string{"a", "abc", "a1", "wireless-headphones", "a-1-b-2"}
	for _, slug := range valid {
		product := validProduct()
		product.Slug = &slug
		assert.Empty(t, ValidateProduct(product), "slug %q should be valid", slug)
	}

	invalid := []string{"", "-abc", "abc-", "a--b", "ABC", "with space", "ünïcode", "a_b"}
	for _, slug := range invalid {
		product := validProduct()
		product.Slug = &slug

		errs := ValidateProduct(product)

		assert.Len(t, errs, 1, "slug %q should be invalid", slug)
		assert.Equal(t, "slug", errs[0].Field)
		assert.Equal(t, "Slug must be lowercase alphanumeric with hyphens only", errs[0].Message)
	}
}

func TestValidateProduct_Price(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "two decimals is valid", value: "29.99", expected: ""},
		{name: "integer is valid", value: "29", expected: ""},
		{name: "trailing zero is valid", value: "29.990", expected: ""},
		{name: "zero is valid", value: "0", expected: ""},
		{name: "three decimals", value: "29.999", expected: "Price must have at most 2 decimal places"},
		{name: "negative", value: "-1", expected: "Price must be a non-negative number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := validProduct()
			product.Price = decPtr(tt.value)

			errs := ValidateProduct(product)

			if tt.expected == "" {
				assert.Empty(t, errs)
				return
			}
			assert.Len(t, errs, 1)
			assert.Equal(t, "price", errs[0].Field)
			assert.Equal(t, tt.expected, errs[0].Message)
		})
	}
}

func TestValidateProduct_Category(t *testing.T) {
	product := validProduct()
	product.Category = strPtr("Gadgets")

	errs := ValidateProduct(product)

	assert.Len(t, errs, 1)
	assert.Equal(t, "category", errs[0].Field)
	assert.Equal(
		t,
		"Category must be one of: Electronics, Clothing, Home & Garden, Sports & Outdoors, Books, Toys & Games, Health & Beauty, Food & Beverages",
		errs[0].Message,
	)

	for _, category := range Categories {
		product := validProduct()
		product.Category = &category
		assert.Empty(t, ValidateProduct(product), "category %q should be valid", category)
	}
}

func TestValidateProduct_Inventory(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "integer is valid", value: "10", expected: ""},
		{name: "zero is valid", value: "0", expected: ""},
		{name: "fractional", value: "10.5", expected: "Inventory must be an integer"},
		{name: "negative", value: "-1", expected: "Inventory must be a non-negative number"},
		{name: "column maximum is valid", value: "2147483647", expected: ""},
		{name: "above column maximum", value: "2147483648", expected: "Inventory must not exceed 2147483647"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := validProduct()
			product.Inventory = decPtr(tt.value)

			errs := ValidateProduct(product)

			if tt.expected == "" {
				assert.Empty(t, errs)
				return
			}
			assert.Len(t, errs, 1)
			assert.Equal(t, "inventory", errs[0].Field)
			assert.Equal(t, tt.expected, errs[0].Message)
		})
	}
}

func TestValidatePartialProduct(t *testing.T) {
	assert.Empty(t, ValidatePartialProduct(request.Product{}))
	assert.Empty(t, ValidatePartialProduct(request.Product{Price: decPtr("29.99")}))

	errs := ValidatePartialProduct(request.Product{Price: decPtr("29.999")})
	assert.Len(t, errs, 1)
	assert.Equal(t, "price", errs[0].Field)
	assert.Equal(t, "Price must have at most 2 decimal places", errs[0].Message)

	errs = ValidatePartialProduct(request.Product{Slug: strPtr("Bad Slug"), Name: strPtr("ok name")})
	assert.Len(t, errs, 1)
	assert.Equal(t, "slug", errs[0].Field)
}
