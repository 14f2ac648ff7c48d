package recipe

import (
	"pantry-keeper/internal/pkg/common"
)

// Recipe 食譜
type Recipe = common.Recipe

// Ingredient 食譜的食材需求
type Ingredient = common.RecipeIngredient

// MatchResult 單位比對的明確三態結果，
// 不從附帶的相等檢查推斷使用者意圖
type MatchResult string

const (
	// MatchExactUnit 儲藏室單位與需求單位完全一致，可自動扣減
	MatchExactUnit MatchResult = "exact_unit"
	// MatchUserConverted 使用者以儲藏室單位手動換算過的覆寫，視為權威
	MatchUserConverted MatchResult = "user_converted"
	// MatchUnresolved 單位不一致且尚無可信的換算，不做自動扣減
	MatchUnresolved MatchResult = "unresolved"
)

// ConsumptionProposal 對單一儲藏室項目的扣減提案
type ConsumptionProposal struct {
	PantryItemID          string      `json:"pantry_item_id"`
	PantryName            string      `json:"pantry_name"`
	Unit                  string      `json:"unit"` // 儲藏室紀錄的單位
	RequiredQuantity      float64     `json:"required_quantity"`
	RequiredUnit          string      `json:"required_unit"`
	InitialQuantity       float64     `json:"initial_quantity"`
	ProposedFinalQuantity float64     `json:"proposed_final_quantity"`
	Match                 MatchResult `json:"match"`
	UnitsMatch            bool        `json:"units_match"`
}

// RecipeAvailability 儲藏室對食譜的覆蓋率（只看有無，不看數量是否足夠）
type RecipeAvailability struct {
	Percentage   int `json:"percentage"` // 0–100
	MatchedCount int `json:"matched_count"`
	TotalCount   int `json:"total_count"`
}
