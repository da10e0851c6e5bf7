package usda

import (
	"testing"

	"github.com/grocerlist/usdaimport/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceID(t *testing.T) {
	assert.Equal(t, "171688", SourceID(&domain.RawFood{FdcID: 171688}))
}

func TestMapNutrients(t *testing.T) {
	tests := []struct {
		name     string
		input    []domain.USDANutrient
		expected []domain.Nutrient
	}{
		{
			name: "renames fields and keeps order",
			input: []domain.USDANutrient{
				{NutrientID: 1008, NutrientName: "Energy", UnitName: "KCAL", Value: 52},
				{NutrientID: 1003, NutrientName: "Protein", UnitName: "G", Value: 0.26},
			},
			expected: []domain.Nutrient{
				{NutrientName: "Energy", Amount: 52, Unit: "KCAL"},
				{NutrientName: "Protein", Amount: 0.26, Unit: "G"},
			},
		},
		{
			name:     "nil input gives empty list",
			input:    nil,
			expected: []domain.Nutrient{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MapNutrients(tt.input)
			require.NotNil(t, result)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestMapServingSize(t *testing.T) {
	assert.Nil(t, MapServingSize(&domain.RawFood{}))

	serving := MapServingSize(&domain.RawFood{ServingSize: 28, ServingSizeUnit: "g"})
	require.NotNil(t, serving)
	assert.Equal(t, 28.0, serving.Amount)
	assert.Equal(t, "g", serving.Unit)
}

func TestMapOptionalStrings(t *testing.T) {
	assert.Nil(t, MapBrandOwner(&domain.RawFood{}))
	assert.Nil(t, MapIngredients(&domain.RawFood{}))

	food := &domain.RawFood{BrandOwner: "Acme Foods", Ingredients: "OATS, SALT"}
	require.NotNil(t, MapBrandOwner(food))
	assert.Equal(t, "Acme Foods", *MapBrandOwner(food))
	require.NotNil(t, MapIngredients(food))
	assert.Equal(t, "OATS, SALT", *MapIngredients(food))
}
