package usecase

import (
	"strings"

	"github.com/grocerlist/usdaimport/internal/domain"
)

// excludeKeywords marks records outside the grocery catalogue: supplements,
// infant and clinical nutrition, and pet food
var excludeKeywords = []string{
	"supplement",
	"infant",
	"toddler",
	"medical",
	"clinical",
	"enteral",
	"pet",
	"dog",
	"cat",
}

// IsBeneficial reports whether a record belongs in the catalogue. Matching
// is a case-insensitive substring test over the category and description;
// missing fields count as empty text.
func IsBeneficial(food *domain.RawFood) bool {
	category := strings.ToLower(food.FoodCategory)
	description := strings.ToLower(food.Description)

	for _, keyword := range excludeKeywords {
		if strings.Contains(category, keyword) || strings.Contains(description, keyword) {
			return false
		}
	}
	return true
}
