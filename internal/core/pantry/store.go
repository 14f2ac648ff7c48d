package pantry

import (
	"sync"

	"pantry-keeper/internal/pkg/common"
)

// SnapshotStore 本地庫存快照的明確狀態容器。
// 所有變更都經過定義好的方法，沒有環境性的全域可變狀態；
// 樂觀更新先寫入這裡，gateway 失敗時以 Restore 精確還原。
type SnapshotStore struct {
	mu    sync.RWMutex
	items []common.PantryItem
}

// NewSnapshotStore 創建空的快照容器
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		items: make([]common.PantryItem, 0, 32),
	}
}

// cloneItems 深拷貝項目切片（Nutrition 為指標，必須一併複製才能精確回滾）
func cloneItems(items []common.PantryItem) []common.PantryItem {
	cloned := make([]common.PantryItem, len(items))
	for i, item := range items {
		cloned[i] = item
		if item.Nutrition != nil {
			n := *item.Nutrition
			cloned[i].Nutrition = &n
		}
	}
	return cloned
}

// Items 回傳目前快照的拷貝，呼叫方可安全迭代
func (s *SnapshotStore) Items() []common.PantryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Snapshot 回傳可用於回滾的深拷貝
func (s *SnapshotStore) Snapshot() []common.PantryItem {
	return s.Items()
}

// Replace 以新的項目列表取代整個快照
func (s *SnapshotStore) Replace(items []common.PantryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = cloneItems(items)
}

// Restore 回滾至先前以 Snapshot 取得的狀態
func (s *SnapshotStore) Restore(snapshot []common.PantryItem) {
	s.Replace(snapshot)
}

// Append 追加項目（依輸入順序）
func (s *SnapshotStore) Append(items ...common.PantryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, cloneItems(items)...)
}

// Find 依 ID 尋找項目
func (s *SnapshotStore) Find(id string) (common.PantryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return common.PantryItem{}, false
}

// SetQuantity 更新單一項目的數量
func (s *SnapshotStore) SetQuantity(id string, quantity float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			return true
		}
	}
	return false
}

// Update 以完整紀錄取代相同 ID 的項目
func (s *SnapshotStore) Update(item common.PantryItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i] = item
			if item.Nutrition != nil {
				n := *item.Nutrition
				s.items[i].Nutrition = &n
			}
			return true
		}
	}
	return false
}

// ApplyDraft 將草稿欄位套用到相同 ID 的項目（合併編輯提交用）
func (s *SnapshotStore) ApplyDraft(id string, draft common.PantryItemDraft) bool {
	item := common.PantryItem{
		ID:         id,
		Name:       draft.Name,
		Quantity:   draft.Quantity,
		Unit:       draft.Unit,
		Category:   draft.Category,
		Notes:      draft.Notes,
		ExpiryDate: draft.ExpiryDate,
		Price:      draft.Price,
		Nutrition:  draft.Nutrition,
	}
	return s.Update(item)
}

// Remove 依 ID 移除項目
func (s *SnapshotStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear 清空快照
func (s *SnapshotStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.items[:0]
}

// Len 回傳目前項目數
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
