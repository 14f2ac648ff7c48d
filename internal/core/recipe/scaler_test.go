package recipe

import (
	"testing"

	"pantry-keeper/internal/infrastructure/config"
	"pantry-keeper/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Pantry: config.PantryConfig{
			DefaultUnit:     "份",
			DefaultCategory: "未分類",
			RoundDecimals:   2,
		},
	}
}

func eggRecipe() Recipe {
	return Recipe{
		ID:           "r-1",
		Name:         "蛋餅",
		BaseServings: 2,
		Ingredients: []Ingredient{
			{Name: "Eggs", Quantity: 2, Unit: "顆"},
			{Name: "Flour", Quantity: 100, Unit: "g"},
		},
	}
}

func TestComputeDeltas_ScalesToTargetServings(t *testing.T) {
	s := NewScaler(testConfig())
	inventory := []common.PantryItem{
		{ID: "p-1", Name: "eggs", Quantity: 12, Unit: "顆"},
		{ID: "p-2", Name: "flour", Quantity: 500, Unit: "g"},
	}

	// 基準 2 份放大到 4 份：需求量加倍
	proposals, err := s.ComputeDeltas(eggRecipe(), 4, inventory)
	require.NoError(t, err)
	require.Len(t, proposals, 2)

	eggs := proposals["p-1"]
	assert.Equal(t, MatchExactUnit, eggs.Match)
	assert.Equal(t, 4.0, eggs.RequiredQuantity)
	assert.Equal(t, 12.0, eggs.InitialQuantity)
	assert.Equal(t, 8.0, eggs.ProposedFinalQuantity)
	assert.Equal(t, 4.0, s.Delta(eggs))

	flour := proposals["p-2"]
	assert.Equal(t, 200.0, flour.RequiredQuantity)
	assert.Equal(t, 300.0, flour.ProposedFinalQuantity)
}

func TestComputeDeltas_IdentityAtBaseServings(t *testing.T) {
	s := NewScaler(testConfig())
	inventory := []common.PantryItem{
		{ID: "p-1", Name: "Eggs", Quantity: 12, Unit: "顆"},
	}

	proposals, err := s.ComputeDeltas(eggRecipe(), 2, inventory)
	require.NoError(t, err)

	eggs := proposals["p-1"]
	assert.Equal(t, 2.0, eggs.RequiredQuantity)
	assert.Equal(t, 10.0, eggs.ProposedFinalQuantity)
}

func TestComputeDeltas_FloorsAtZero(t *testing.T) {
	s := NewScaler(testConfig())
	inventory := []common.PantryItem{
		{ID: "p-1", Name: "Eggs", Quantity: 1, Unit: "顆"},
	}

	// 需求超過庫存時最終數量停在 0，不會變負
	proposals, err := s.ComputeDeltas(eggRecipe(), 6, inventory)
	require.NoError(t, err)

	eggs := proposals["p-1"]
	assert.Equal(t, 6.0, eggs.RequiredQuantity)
	assert.Equal(t, 0.0, eggs.ProposedFinalQuantity)
	assert.Equal(t, 1.0, s.Delta(eggs))
}

func TestComputeDeltas_UnitMismatchIsUnresolved(t *testing.T) {
	s := NewScaler(testConfig())
	inventory := []common.PantryItem{
		{ID: "p-1", Name: "Flour", Quantity: 2, Unit: "kg"},
	}

	recipe := Recipe{
		Name:         "麵包",
		BaseServings: 1,
		Ingredients:  []Ingredient{{Name: "flour", Quantity: 300, Unit: "g"}},
	}

	proposals, err := s.ComputeDeltas(recipe, 1, inventory)
	require.NoError(t, err)

	flour := proposals["p-1"]
	assert.Equal(t, MatchUnresolved, flour.Match)
	assert.False(t, flour.UnitsMatch)
	// 待決提案不動庫存
	assert.Equal(t, 2.0, flour.ProposedFinalQuantity)
	assert.Equal(t, 0.0, s.Delta(flour))
}

func TestComputeDeltas_UnmatchedIngredientSkipped(t *testing.T) {
	s := NewScaler(testConfig())
	inventory := []common.PantryItem{
		{ID: "p-1", Name: "Eggs", Quantity: 12, Unit: "顆"},
	}

	proposals, err := s.ComputeDeltas(eggRecipe(), 2, inventory)
	require.NoError(t, err)

	// Flour 對應不到，不產生提案
	assert.Len(t, proposals, 1)
	_, ok := proposals["p-1"]
	assert.True(t, ok)
}

func TestComputeDeltas_DuplicateMappingFirstWins(t *testing.T) {
	s := NewScaler(testConfig())
	inventory := []common.PantryItem{
		{ID: "p-1", Name: "Eggs", Quantity: 12, Unit: "顆"},
	}

	recipe := Recipe{
		Name:         "雙蛋料理",
		BaseServings: 1,
		Ingredients: []Ingredient{
			{Name: "Eggs", Quantity: 2, Unit: "顆"},
			{Name: "eggs", Quantity: 5, Unit: "顆"},
		},
	}

	proposals, err := s.ComputeDeltas(recipe, 1, inventory)
	require.NoError(t, err)
	require.Len(t, proposals, 1)

	// 同一筆紀錄以先出現的需求為準
	assert.Equal(t, 2.0, proposals["p-1"].RequiredQuantity)
}

func TestComputeDeltas_InvalidServings(t *testing.T) {
	s := NewScaler(testConfig())

	_, err := s.ComputeDeltas(eggRecipe(), 0, nil)
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))

	bad := eggRecipe()
	bad.BaseServings = 0
	_, err = s.ComputeDeltas(bad, 2, nil)
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
}

func TestApplyOverride_RederivesMatch(t *testing.T) {
	s := NewScaler(testConfig())
	base := ConsumptionProposal{
		PantryItemID:          "p-1",
		PantryName:            "Flour",
		Unit:                  "kg",
		RequiredQuantity:      300,
		RequiredUnit:          "g",
		InitialQuantity:       2,
		ProposedFinalQuantity: 2,
		Match:                 MatchUnresolved,
	}

	// 使用者以儲藏室單位換算後的覆寫視為權威
	converted := s.ApplyOverride(base, 1.7, "kg")
	assert.Equal(t, MatchUserConverted, converted.Match)
	assert.True(t, converted.UnitsMatch)
	assert.Equal(t, 1.7, converted.ProposedFinalQuantity)
	assert.InDelta(t, 0.3, s.Delta(converted), 1e-9)

	// 同單位同數量只是重述，仍是單位一致
	restated := s.ApplyOverride(base, 2, "kg")
	assert.Equal(t, MatchExactUnit, restated.Match)

	// 其他單位維持待決，數量回到初始值
	still := s.ApplyOverride(base, 1.7, "磅")
	assert.Equal(t, MatchUnresolved, still.Match)
	assert.Equal(t, 2.0, still.ProposedFinalQuantity)
}

func TestApplyOverride_ClampsNegativeQuantity(t *testing.T) {
	s := NewScaler(testConfig())
	p := ConsumptionProposal{
		PantryItemID:    "p-1",
		Unit:            "顆",
		InitialQuantity: 3,
	}

	out := s.ApplyOverride(p, -5, "顆")
	assert.Equal(t, 0.0, out.ProposedFinalQuantity)
	assert.Equal(t, MatchUserConverted, out.Match)
}

func TestDelta_RoundsToConfiguredDecimals(t *testing.T) {
	s := NewScaler(testConfig())
	p := ConsumptionProposal{
		InitialQuantity:       1,
		ProposedFinalQuantity: 0.665,
	}
	// 0.335 進位到兩位小數
	assert.Equal(t, 0.34, s.Delta(p))
}
