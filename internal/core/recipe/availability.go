package recipe

import (
	"math"

	"pantry-keeper/internal/core/pantry"
	"pantry-keeper/internal/pkg/common"
)

// ComputeAvailability 計算儲藏室對食譜的覆蓋率。
// 只看正規化名稱是否存在，不要求數量足夠；
// 沒有食材的食譜定義為 100（沒有東西會缺）。
// 呈現層的顏色門檻（≥80 良好、≥50 部分）是消費端的策略，不在這裡。
func ComputeAvailability(recipe Recipe, inventory []common.PantryItem) RecipeAvailability {
	total := len(recipe.Ingredients)
	if total == 0 {
		return RecipeAvailability{
			Percentage:   100,
			MatchedCount: 0,
			TotalCount:   0,
		}
	}

	matched := 0
	for _, req := range recipe.Ingredients {
		if _, ok := pantry.FindByName(req.Name, inventory); ok {
			matched++
		}
	}

	return RecipeAvailability{
		Percentage:   int(math.Round(100 * float64(matched) / float64(total))),
		MatchedCount: matched,
		TotalCount:   total,
	}
}
