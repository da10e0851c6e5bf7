package domain

const (
	// CategoryOther is assigned when no category rule matches
	CategoryOther = "Other"

	// PlaceholderPrice is written to every item. The upstream feed carries no
	// pricing; the field exists to satisfy the persisted schema.
	PlaceholderPrice = 1.00

	// DataSourceUSDA tags the provenance of every imported item
	DataSourceUSDA = "USDA_FDC"
)

// Season is the primary growing season associated with an item
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

// Valid reports whether s is one of the four known seasons
func (s Season) Valid() bool {
	switch s {
	case SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter:
		return true
	}
	return false
}

// GroceryItem is the normalized catalogue entry persisted by the importer
type GroceryItem struct {
	ID           string       `json:"id"`
	SourceID     string       `json:"sourceId"`
	Name         string       `json:"name"`
	Category     string       `json:"category"`
	Price        float64      `json:"price"`
	Season       *Season      `json:"season"`
	Nutrients    []Nutrient   `json:"nutrients"`
	IsVegan      bool         `json:"isVegan"`
	IsGlutenFree bool         `json:"isGlutenFree"`
	ServingSize  *ServingSize `json:"servingSize"`
	BrandOwner   *string      `json:"brandOwner"`
	Ingredients  *string      `json:"ingredients"`
	DataSource   string       `json:"dataSource"`
}

// Nutrient is a renamed copy of an upstream nutrient measurement
type Nutrient struct {
	NutrientName string  `json:"nutrientName"`
	Amount       float64 `json:"amount"`
	Unit         string  `json:"unit"`
}

// ServingSize holds the labelled serving of a branded product
type ServingSize struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// CategoryRule maps any of its match terms to a catalogue category
type CategoryRule struct {
	Match []string `json:"match" yaml:"match"`
	To    string   `json:"to" yaml:"to"`
}

// SeasonRule maps any of its match terms to a primary season
type SeasonRule struct {
	Match  []string `json:"match" yaml:"match"`
	Season string   `json:"season" yaml:"season"`
}

// LookupTables holds the ordered rule lists consumed by the classifier.
// Order is significant: the first matching rule wins.
type LookupTables struct {
	Categories []CategoryRule
	Seasons    []SeasonRule
}
