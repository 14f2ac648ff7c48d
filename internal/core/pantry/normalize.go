package pantry

import (
	"strings"

	"pantry-keeper/internal/pkg/common"
)

// Normalize 將顯示名稱正規化以便相等比較：轉小寫並去除前後空白。
// 刻意保守的策略，不做模糊比對，行為完全可預期。
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SameIngredient 判斷兩個名稱是否指同一食材
func SameIngredient(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// FindByName 依正規化名稱在快照中尋找第一筆相符的紀錄（以快照的迭代順序為準）。
// 若快照本身含有正規化名稱相同的兩筆紀錄（既有資料異常），只回傳第一筆。
func FindByName(name string, inventory []common.PantryItem) (common.PantryItem, bool) {
	normalized := Normalize(name)
	for _, item := range inventory {
		if Normalize(item.Name) == normalized {
			return item, true
		}
	}
	return common.PantryItem{}, false
}

// FindDuplicate 在快照中尋找與候選草稿衝突的既有紀錄，最多一筆
func FindDuplicate(candidate common.PantryItemDraft, inventory []common.PantryItem) (common.PantryItem, bool) {
	return FindByName(candidate.Name, inventory)
}

// ValidateDraft 驗證草稿的最低要求：非空名稱、正數量。
// 不合格的草稿在進入對帳流程之前同步拒絕。
func ValidateDraft(draft common.PantryItemDraft) error {
	if strings.TrimSpace(draft.Name) == "" {
		return common.NewValidationError("草稿名稱不可為空")
	}
	if draft.Quantity <= 0 {
		return common.NewValidationError("草稿數量必須為正數：%s", draft.Name)
	}
	return nil
}
