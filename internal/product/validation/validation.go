package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/widyatma/catalog/product/pkg/request"
)

// Categories is the closed set a product may belong to. The order matters:
// the enum-membership error message lists them verbatim.
var Categories = []string{
	"Electronics",
	"Clothing",
	"Home & Garden",
	"Sports & Outdoors",
	"Books",
	"Toys & Games",
	"Health & Beauty",
	"Food & Beverages",
}

// slugPattern allows lowercase alphanumeric segments joined by single
// hyphens, with no leading or trailing hyphen.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// maxInventory is the largest value the store's integer column holds; larger
// payloads must fail validation instead of wrapping on the way to the store.
var maxInventory = decimal.NewFromInt(math.MaxInt32)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateProduct checks a create payload: every field is required, then the
// per-field rules apply. It collects one error per offending field.
func ValidateProduct(data request.Product) []FieldError {
	errs := []FieldError{}

	if data.Name == nil {
		errs = append(errs, FieldError{Field: "name", Message: "Name is required"})
	} else if err := validateName(*data.Name); err != nil {
		errs = append(errs, *err)
	}

	if data.Slug == nil {
		errs = append(errs, FieldError{Field: "slug", Message: "Slug is required"})
	} else if err := validateSlug(*data.Slug); err != nil {
		errs = append(errs, *err)
	}

	if data.Description == nil {
		errs = append(errs, FieldError{Field: "description", Message: "Description is required"})
	} else if err := validateDescription(*data.Description); err != nil {
		errs = append(errs, *err)
	}

	if data.Price == nil {
		errs = append(errs, FieldError{Field: "price", Message: "Price is required"})
	} else if err := validatePrice(*data.Price); err != nil {
		errs = append(errs, *err)
	}

	if data.Category == nil {
		errs = append(errs, FieldError{Field: "category", Message: "Category is required"})
	} else if err := validateCategory(*data.Category); err != nil {
		errs = append(errs, *err)
	}

	if data.Inventory == nil {
		errs = append(errs, FieldError{Field: "inventory", Message: "Inventory is required"})
	} else if err := validateInventory(*data.Inventory); err != nil {
		errs = append(errs, *err)
	}

	return errs
}

// ValidatePartialProduct checks an update payload: absent fields are skipped
// entirely, present fields obey the same rules as a create.
func ValidatePartialProduct(data request.Product) []FieldError {
	errs := []FieldError{}

	if data.Name != nil {
		if err := validateName(*data.Name); err != nil {
			errs = append(errs, *err)
		}
	}
	if data.Slug != nil {
		if err := validateSlug(*data.Slug); err != nil {
			errs = append(errs, *err)
		}
	}
	if data.Description != nil {
		if err := validateDescription(*data.Description); err != nil {
			errs = append(errs, *err)
		}
	}
	if data.Price != nil {
		if err := validatePrice(*data.Price); err != nil {
			errs = append(errs, *err)
		}
	}
	if data.Category != nil {
		if err := validateCategory(*data.Category); err != nil {
			errs = append(errs, *err)
		}
	}
	if data.Inventory != nil {
		if err := validateInventory(*data.Inventory); err != nil {
			errs = append(errs, *err)
		}
	}

	return errs
}

func validateName(name string) *FieldError {
	// Length bounds count characters, not bytes; a two-rune multibyte name
	// is still too short.
	length := utf8.RuneCountInString(strings.TrimSpace(name))
	if length < 3 {
		return &FieldError{Field: "name", Message: "Name must be at least 3 characters"}
	}
	if length > 100 {
		return &FieldError{Field: "name", Message: "Name must not exceed 100 characters"}
	}
	return nil
}

func validateSlug(slug string) *FieldError {
	if !slugPattern.MatchString(slug) {
		return &FieldError{Field: "slug", Message: "Slug must be lowercase alphanumeric with hyphens only"}
	}
	return nil
}

func validateDescription(description string) *FieldError {
	length := utf8.RuneCountInString(strings.TrimSpace(description))
	if length < 10 {
		return &FieldError{Field: "description", Message: "Description must be at least 10 characters"}
	}
	if length > 1000 {
		return &FieldError{Field: "description", Message: "Description must not exceed 1000 characters"}
	}
	return nil
}

func validatePrice(price decimal.Decimal) *FieldError {
	if price.IsNegative() {
		return &FieldError{Field: "price", Message: "Price must be a non-negative number"}
	}
	// Rounding to 2 places must be lossless; 29.999 fails even though it
	// would round to a representable value.
	if !price.Round(2).Equal(price) {
		return &FieldError{Field: "price", Message: "Price must have at most 2 decimal places"}
	}
	return nil
}

func validateCategory(category string) *FieldError {
	for _, c := range Categories {
		if category == c {
			return nil
		}
	}
	return &FieldError{
		Field:   "category",
		Message: fmt.Sprintf("Category must be one of: %s", strings.Join(Categories, ", ")),
	}
}

func validateInventory(inventory decimal.Decimal) *FieldError {
	if inventory.IsNegative() {
		return &FieldError{Field: "inventory", Message: "Inventory must be a non-negative number"}
	}
	if !inventory.IsInteger() {
		return &FieldError{Field: "inventory", Message: "Inventory must be an integer"}
	}
	if inventory.GreaterThan(maxInventory) {
		return &FieldError{Field: "inventory", Message: "Inventory must not exceed 2147483647"}
	}
	return nil
}
