package domain

// RawFood represents a food record as returned by the USDA FoodData Central
// search endpoint. Optional fields are left at their zero value when the
// upstream omits them.
type RawFood struct {
	FdcID           int            `json:"fdcId"`
	Description     string         `json:"description"`
	DataType        string         `json:"dataType"`
	FoodCategory    string         `json:"foodCategory,omitempty"`
	BrandOwner      string         `json:"brandOwner,omitempty"`
	Ingredients     string         `json:"ingredients,omitempty"`
	ServingSize     float64        `json:"servingSize,omitempty"`
	ServingSizeUnit string         `json:"servingSizeUnit,omitempty"`
	Nutrients       []USDANutrient `json:"foodNutrients"`
}

// USDANutrient represents a single nutrient measurement from USDA data
type USDANutrient struct {
	NutrientID     int     `json:"nutrientId"`
	NutrientName   string  `json:"nutrientName"`
	NutrientNumber string  `json:"nutrientNumber,omitempty"`
	UnitName       string  `json:"unitName"`
	Value          float64 `json:"value"`
}

// SearchPage represents one page of the USDA search API response
type SearchPage struct {
	Foods       []RawFood `json:"foods"`
	TotalHits   int       `json:"totalHits"`
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
}
