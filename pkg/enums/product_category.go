package enums

import "fmt"

// ProductCategory groups catalog products for browsing filters.
type ProductCategory string

const (
	ProductCategoryTShirts     ProductCategory = "remeras"
	ProductCategoryHoodies     ProductCategory = "buzos"
	ProductCategoryCaps        ProductCategory = "gorras"
	ProductCategoryTotes       ProductCategory = "bolsas"
	ProductCategoryAccessories ProductCategory = "accesorios"
)

var validProductCategories = []ProductCategory{
	ProductCategoryTShirts,
	ProductCategoryHoodies,
	ProductCategoryCaps,
	ProductCategoryTotes,
	ProductCategoryAccessories,
}

// String implements fmt.Stringer.
func (p ProductCategory) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductCategory.
func (p ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
