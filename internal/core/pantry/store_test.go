package pantry

import (
	"testing"

	"pantry-keeper/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStore_SnapshotIsDeepCopy(t *testing.T) {
	store := NewSnapshotStore()
	store.Append(common.PantryItem{
		ID:        "p-1",
		Name:      "Milk",
		Quantity:  2,
		Unit:      "L",
		Nutrition: &common.Nutrition{CaloriesPerUnit: 42},
	})

	snapshot := store.Snapshot()

	// 改動快照不影響 store 內容
	snapshot[0].Quantity = 99
	snapshot[0].Nutrition.CaloriesPerUnit = 0

	item, ok := store.Find("p-1")
	require.True(t, ok)
	assert.Equal(t, 2.0, item.Quantity)
	assert.Equal(t, 42.0, item.Nutrition.CaloriesPerUnit)
}

func TestSnapshotStore_RestoreIsExact(t *testing.T) {
	store := NewSnapshotStore()
	store.Append(
		common.PantryItem{ID: "p-1", Name: "Milk", Quantity: 2, Unit: "L", Nutrition: &common.Nutrition{ProteinPerUnit: 3.4}},
		common.PantryItem{ID: "p-2", Name: "Eggs", Quantity: 12, Unit: "顆"},
	)

	prior := store.Snapshot()

	store.SetQuantity("p-1", 0.5)
	store.Remove("p-2")
	store.Append(common.PantryItem{ID: "p-3", Name: "Butter", Quantity: 1})

	store.Restore(prior)
	assert.Equal(t, prior, store.Items())
}

func TestSnapshotStore_SetQuantity(t *testing.T) {
	store := NewSnapshotStore()
	store.Append(common.PantryItem{ID: "p-1", Name: "Milk", Quantity: 2})

	assert.True(t, store.SetQuantity("p-1", 7))
	item, _ := store.Find("p-1")
	assert.Equal(t, 7.0, item.Quantity)

	assert.False(t, store.SetQuantity("missing", 1))
}

func TestSnapshotStore_ApplyDraft(t *testing.T) {
	store := NewSnapshotStore()
	store.Append(common.PantryItem{ID: "p-1", Name: "Milk", Quantity: 2, Unit: "L", Notes: "舊備註"})

	ok := store.ApplyDraft("p-1", common.PantryItemDraft{
		Name:     "Milk",
		Quantity: 3,
		Unit:     "L",
		Notes:    "合併後",
	})
	require.True(t, ok)

	item, _ := store.Find("p-1")
	assert.Equal(t, 3.0, item.Quantity)
	assert.Equal(t, "合併後", item.Notes)
	// 識別碼不變
	assert.Equal(t, "p-1", item.ID)
}

func TestSnapshotStore_RemoveAndClear(t *testing.T) {
	store := NewSnapshotStore()
	store.Append(
		common.PantryItem{ID: "p-1", Name: "Milk"},
		common.PantryItem{ID: "p-2", Name: "Eggs"},
	)

	assert.True(t, store.Remove("p-1"))
	assert.False(t, store.Remove("p-1"))
	assert.Equal(t, 1, store.Len())

	store.Clear()
	assert.Equal(t, 0, store.Len())
}
