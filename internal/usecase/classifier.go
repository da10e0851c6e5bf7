package usecase

import (
	"strings"

	"github.com/grocerlist/usdaimport/internal/domain"
)

type subcategorySeason struct {
	keyword string
	season  domain.Season
}

// seasonalCategories is consulted before the season table. Both the parent
// category and one of its subcategory keywords must match.
var seasonalCategories = []struct {
	parent        string
	subcategories []subcategorySeason
}{
	{
		parent: "Fresh vegetables",
		subcategories: []subcategorySeason{
			{"Leafy vegetables", domain.SeasonSpring},
			{"Summer squash", domain.SeasonSummer},
			{"Winter squash", domain.SeasonFall},
			{"Root vegetables", domain.SeasonWinter},
		},
	},
}

// veganCategories are the only categories an item can be vegan in
var veganCategories = []string{
	"Vegetables",
	"Fruits",
	"Legumes",
	"Nuts and Seeds",
	"Grains",
}

// glutenCategories mark an item as containing gluten when found in its
// category or ingredients
var glutenCategories = []string{
	"Wheat",
	"Barley",
	"Rye",
	"Breads",
	"Pasta",
	"Cereals",
}

var nonVeganKeywords = []string{"milk", "egg", "honey", "gelatin", "whey", "casein", "lard"}

// Classification is the derived catalogue metadata of a raw record
type Classification struct {
	Category     string
	Season       *domain.Season
	IsVegan      bool
	IsGlutenFree bool
}

// Classifier derives category, season and dietary flags from a raw record.
// It holds no mutable state; the same record always classifies the same way.
type Classifier struct {
	categories []domain.CategoryRule
	seasons    []domain.SeasonRule
}

// NewClassifier creates a classifier over the given lookup tables. Rule
// order is preserved: the first matching rule wins.
func NewClassifier(tables domain.LookupTables) *Classifier {
	return &Classifier{
		categories: lowerCategoryRules(tables.Categories),
		seasons:    lowerSeasonRules(tables.Seasons),
	}
}

// Classify runs every derivation over food
func (c *Classifier) Classify(food *domain.RawFood) Classification {
	return Classification{
		Category:     c.MapCategory(food.FoodCategory, food.Description),
		Season:       c.DetermineSeason(food.FoodCategory, food.Description),
		IsVegan:      IsVegan(food.FoodCategory, food.Ingredients),
		IsGlutenFree: IsGlutenFree(food.FoodCategory, food.Ingredients),
	}
}

// MapCategory returns the target of the first rule with a term contained in
// the combined category and description, or domain.CategoryOther
func (c *Classifier) MapCategory(foodCategory, description string) string {
	source := strings.ToLower(foodCategory + " " + description)
	for _, rule := range c.categories {
		if containsAny(source, rule.Match) {
			return rule.To
		}
	}
	return domain.CategoryOther
}

// DetermineSeason returns the single primary season for an item, or nil when
// it has no strong seasonal association
func (c *Classifier) DetermineSeason(foodCategory, description string) *domain.Season {
	lowerDescription := strings.ToLower(description)
	for _, parent := range seasonalCategories {
		if !strings.Contains(foodCategory, parent.parent) {
			continue
		}
		for _, sub := range parent.subcategories {
			if strings.Contains(lowerDescription, strings.ToLower(sub.keyword)) {
				season := sub.season
				return &season
			}
		}
	}

	name := strings.ToLower(foodCategory + " " + description)
	for _, rule := range c.seasons {
		season := domain.Season(strings.ToLower(rule.Season))
		// Rules naming anything but the four seasons never match
		if !season.Valid() {
			continue
		}
		if containsAny(name, rule.Match) {
			return &season
		}
	}
	return nil
}

// IsVegan is false when the ingredients name an animal product; otherwise it
// is true only for categories on the vegan allowlist
func IsVegan(foodCategory, ingredients string) bool {
	if containsAny(strings.ToLower(ingredients), nonVeganKeywords) {
		return false
	}
	category := strings.ToLower(foodCategory)
	for _, vegan := range veganCategories {
		if strings.Contains(category, strings.ToLower(vegan)) {
			return true
		}
	}
	return false
}

// IsGlutenFree is true unless the category or ingredients name a
// gluten-bearing category
func IsGlutenFree(foodCategory, ingredients string) bool {
	category := strings.ToLower(foodCategory)
	lowerIngredients := strings.ToLower(ingredients)
	for _, gluten := range glutenCategories {
		g := strings.ToLower(gluten)
		if strings.Contains(category, g) || strings.Contains(lowerIngredients, g) {
			return false
		}
	}
	return true
}

// containsAny reports whether text contains any of terms. terms must
// already be lowercase.
func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func lowerCategoryRules(rules []domain.CategoryRule) []domain.CategoryRule {
	out := make([]domain.CategoryRule, len(rules))
	for i, rule := range rules {
		out[i] = domain.CategoryRule{Match: lowerAll(rule.Match), To: rule.To}
	}
	return out
}

func lowerSeasonRules(rules []domain.SeasonRule) []domain.SeasonRule {
	out := make([]domain.SeasonRule, len(rules))
	for i, rule := range rules {
		out[i] = domain.SeasonRule{Match: lowerAll(rule.Match), Season: rule.Season}
	}
	return out
}

func lowerAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, term := range terms {
		out[i] = strings.ToLower(term)
	}
	return out
}
