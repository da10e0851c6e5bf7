package usecase

import (
	"github.com/grocerlist/usdaimport/internal/domain"
	"github.com/grocerlist/usdaimport/internal/infrastructure/usda"
)

// Transform maps a raw USDA record and its classification into a catalogue
// item. Price is always domain.PlaceholderPrice since the feed carries none.
func Transform(food *domain.RawFood, c Classification) domain.GroceryItem {
	id := usda.SourceID(food)
	return domain.GroceryItem{
		ID:           id,
		SourceID:     id,
		Name:         food.Description,
		Category:     c.Category,
		Price:        domain.PlaceholderPrice,
		Season:       c.Season,
		Nutrients:    usda.MapNutrients(food.Nutrients),
		IsVegan:      c.IsVegan,
		IsGlutenFree: c.IsGlutenFree,
		ServingSize:  usda.MapServingSize(food),
		BrandOwner:   usda.MapBrandOwner(food),
		Ingredients:  usda.MapIngredients(food),
		DataSource:   domain.DataSourceUSDA,
	}
}
