package common

import (
	"fmt"
	"strings"
)

// Nutrition 營養資訊（以標準單位計）
type Nutrition struct {
	CaloriesPerUnit float64 `json:"calories_per_unit,omitempty"`
	ProteinPerUnit  float64 `json:"protein_per_unit,omitempty"`
	CarbsPerUnit    float64 `json:"carbs_per_unit,omitempty"`
	FatPerUnit      float64 `json:"fat_per_unit,omitempty"`
}

// PantryItem 儲藏室項目（由 Persistence Gateway 持有的持久化紀錄）
type PantryItem struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Quantity   float64    `json:"quantity"`
	Unit       string     `json:"unit"`
	Category   string     `json:"category,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	ExpiryDate string     `json:"expiry_date,omitempty"`
	Price      float64    `json:"price,omitempty"`
	Nutrition  *Nutrition `json:"nutrition,omitempty"`
}

// PantryItemDraft 尚未儲存的候選項目（與 PantryItem 同形，去除 ID）
type PantryItemDraft struct {
	Name       string     `json:"name"`
	Quantity   float64    `json:"quantity"`
	Unit       string     `json:"unit"`
	Category   string     `json:"category,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	ExpiryDate string     `json:"expiry_date,omitempty"`
	Price      float64    `json:"price,omitempty"`
	Nutrition  *Nutrition `json:"nutrition,omitempty"`
}

// PantryItemPatch 部分更新（nil 欄位表示不變更）
type PantryItemPatch struct {
	Name       *string    `json:"name,omitempty"`
	Quantity   *float64   `json:"quantity,omitempty"`
	Unit       *string    `json:"unit,omitempty"`
	Category   *string    `json:"category,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
	ExpiryDate *string    `json:"expiry_date,omitempty"`
	Price      *float64   `json:"price,omitempty"`
	Nutrition  *Nutrition `json:"nutrition,omitempty"`
}

// RecipeIngredient 食譜的食材需求，數量以食譜的基準份數表示
type RecipeIngredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Optional bool    `json:"optional,omitempty"`
}

// Recipe 食譜
type Recipe struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	BaseServings int                `json:"base_servings"`
	Ingredients  []RecipeIngredient `json:"ingredients"`
}

// Draft 轉換為草稿（保留除 ID 外的全部欄位）
func (p PantryItem) Draft() PantryItemDraft {
	return PantryItemDraft{
		Name:       p.Name,
		Quantity:   p.Quantity,
		Unit:       p.Unit,
		Category:   p.Category,
		Notes:      p.Notes,
		ExpiryDate: p.ExpiryDate,
		Price:      p.Price,
		Nutrition:  p.Nutrition,
	}
}

// DraftSliceToString 將草稿切片轉換為格式化的字符串（記錄日誌用）
func DraftSliceToString(drafts []PantryItemDraft) string {
	if len(drafts) == 0 {
		return ""
	}

	var parts []string
	for _, d := range drafts {
		part := d.Name
		if d.Quantity > 0 {
			part += fmt.Sprintf(" %g%s", d.Quantity, d.Unit)
		}
		if d.Category != "" {
			part += fmt.Sprintf("（%s）", d.Category)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "、")
}

// StringSliceToString 將字符串切片轉換為頓號分隔的字符串
func StringSliceToString(slice []string) string {
	if len(slice) == 0 {
		return ""
	}
	return strings.Join(slice, "、")
}
