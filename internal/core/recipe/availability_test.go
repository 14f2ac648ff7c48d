package recipe

import (
	"testing"

	"pantry-keeper/internal/pkg/common"

	"github.com/stretchr/testify/assert"
)

func TestComputeAvailability_PartialCoverage(t *testing.T) {
	recipe := Recipe{
		Name:         "咖哩飯",
		BaseServings: 2,
		Ingredients: []Ingredient{
			{Name: "Rice", Quantity: 300, Unit: "g"},
			{Name: "Carrot", Quantity: 1, Unit: "根"},
			{Name: "Potato", Quantity: 2, Unit: "顆"},
			{Name: "Curry Roux", Quantity: 1, Unit: "盒"},
		},
	}
	inventory := []common.PantryItem{
		{ID: "p-1", Name: "rice", Quantity: 1000, Unit: "g"},
		{ID: "p-2", Name: "CARROT", Quantity: 3, Unit: "根"},
		{ID: "p-3", Name: "potato", Quantity: 5, Unit: "顆"},
	}

	got := ComputeAvailability(recipe, inventory)
	assert.Equal(t, 75, got.Percentage)
	assert.Equal(t, 3, got.MatchedCount)
	assert.Equal(t, 4, got.TotalCount)
}

func TestComputeAvailability_FullCoverage(t *testing.T) {
	recipe := Recipe{
		Ingredients: []Ingredient{
			{Name: "Eggs", Quantity: 2, Unit: "顆"},
		},
	}
	inventory := []common.PantryItem{
		// 數量不足也算有：覆蓋率只看有無
		{ID: "p-1", Name: "eggs", Quantity: 0.5, Unit: "顆"},
	}

	got := ComputeAvailability(recipe, inventory)
	assert.Equal(t, 100, got.Percentage)
}

func TestComputeAvailability_NoIngredients(t *testing.T) {
	got := ComputeAvailability(Recipe{Name: "白開水"}, nil)
	assert.Equal(t, 100, got.Percentage)
	assert.Equal(t, 0, got.TotalCount)
}

func TestComputeAvailability_EmptyInventory(t *testing.T) {
	recipe := Recipe{
		Ingredients: []Ingredient{
			{Name: "Eggs", Quantity: 2, Unit: "顆"},
			{Name: "Flour", Quantity: 100, Unit: "g"},
			{Name: "Milk", Quantity: 200, Unit: "ml"},
		},
	}

	got := ComputeAvailability(recipe, nil)
	assert.Equal(t, 0, got.Percentage)
	assert.Equal(t, 0, got.MatchedCount)
}
