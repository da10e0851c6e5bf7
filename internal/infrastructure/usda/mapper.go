package usda

import (
	"strconv"

	"github.com/grocerlist/usdaimport/internal/domain"
)

// SourceID returns the stable catalogue identifier for a USDA record
func SourceID(food *domain.RawFood) string {
	return strconv.Itoa(food.FdcID)
}

// MapNutrients renames USDA nutrient measurements into catalogue nutrients.
// Values are copied as-is; the result is never nil.
func MapNutrients(usdaNutrients []domain.USDANutrient) []domain.Nutrient {
	nutrients := make([]domain.Nutrient, 0, len(usdaNutrients))
	for _, n := range usdaNutrients {
		nutrients = append(nutrients, domain.Nutrient{
			NutrientName: n.NutrientName,
			Amount:       n.Value,
			Unit:         n.UnitName,
		})
	}
	return nutrients
}

// MapServingSize returns the labelled serving, or nil when USDA has none
func MapServingSize(food *domain.RawFood) *domain.ServingSize {
	if food.ServingSize == 0 {
		return nil
	}
	return &domain.ServingSize{
		Amount: food.ServingSize,
		Unit:   food.ServingSizeUnit,
	}
}

// optionalString maps an empty upstream string to nil
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// MapBrandOwner returns the brand owner or nil
func MapBrandOwner(food *domain.RawFood) *string {
	return optionalString(food.BrandOwner)
}

// MapIngredients returns the ingredient statement or nil
func MapIngredients(food *domain.RawFood) *string {
	return optionalString(food.Ingredients)
}
