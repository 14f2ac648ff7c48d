package recipe

import (
	"context"
	"fmt"
	"testing"

	"pantry-keeper/internal/core/pantry"
	"pantry-keeper/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordOnlyGateway 只關心 RecordRecipeUse 的測試 gateway
type recordOnlyGateway struct {
	recordErr error

	recordedRecipeID string
	recordedServings int
	recordedDeltas   map[string]float64
}

func (f *recordOnlyGateway) ListItems(ctx context.Context) ([]common.PantryItem, error) {
	return nil, nil
}

func (f *recordOnlyGateway) CreateItems(ctx context.Context, drafts []common.PantryItemDraft) ([]common.PantryItem, error) {
	return nil, nil
}

func (f *recordOnlyGateway) UpdateItem(ctx context.Context, id string, patch *common.PantryItemPatch) (*common.PantryItem, error) {
	return nil, nil
}

func (f *recordOnlyGateway) DeleteItem(ctx context.Context, id string) error {
	return nil
}

func (f *recordOnlyGateway) ClearAll(ctx context.Context) error {
	return nil
}

func (f *recordOnlyGateway) RecordRecipeUse(ctx context.Context, recipeID string, servings int, deltas map[string]float64) error {
	if f.recordErr != nil {
		return common.NewPersistenceError("record_recipe_use", f.recordErr)
	}
	f.recordedRecipeID = recipeID
	f.recordedServings = servings
	f.recordedDeltas = deltas
	return nil
}

func newTestConsumeService(t *testing.T, seed ...common.PantryItem) (*ConsumeService, *recordOnlyGateway, *pantry.SnapshotStore) {
	t.Helper()
	gw := &recordOnlyGateway{}
	store := pantry.NewSnapshotStore()
	store.Append(seed...)
	return NewConsumeService(testConfig(), gw, store), gw, store
}

func TestConsumeService_Preview(t *testing.T) {
	svc, _, _ := newTestConsumeService(t,
		common.PantryItem{ID: "p-1", Name: "Eggs", Quantity: 12, Unit: "顆"},
	)

	proposals, availability, err := svc.Preview(eggRecipe(), 4)
	require.NoError(t, err)

	require.Len(t, proposals, 1)
	assert.Equal(t, 8.0, proposals["p-1"].ProposedFinalQuantity)
	assert.Equal(t, 50, availability.Percentage)
}

func TestConsumeService_ConsumeUpdatesSnapshot(t *testing.T) {
	svc, gw, store := newTestConsumeService(t,
		common.PantryItem{ID: "p-1", Name: "Eggs", Quantity: 12, Unit: "顆"},
		common.PantryItem{ID: "p-2", Name: "Flour", Quantity: 500, Unit: "g"},
	)

	proposals, _, err := svc.Preview(eggRecipe(), 4)
	require.NoError(t, err)

	flat := make([]ConsumptionProposal, 0, len(proposals))
	for _, p := range proposals {
		flat = append(flat, p)
	}

	deltas, err := svc.Consume(context.Background(), eggRecipe(), 4, flat)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"p-1": 4, "p-2": 200}, deltas)
	assert.Equal(t, "r-1", gw.recordedRecipeID)
	assert.Equal(t, 4, gw.recordedServings)

	eggs, _ := store.Find("p-1")
	assert.Equal(t, 8.0, eggs.Quantity)
	flour, _ := store.Find("p-2")
	assert.Equal(t, 300.0, flour.Quantity)
}

func TestConsumeService_RejectsUnresolvedProposal(t *testing.T) {
	svc, _, store := newTestConsumeService(t,
		common.PantryItem{ID: "p-1", Name: "Flour", Quantity: 2, Unit: "kg"},
	)

	recipe := Recipe{
		ID:           "r-2",
		Name:         "麵包",
		BaseServings: 1,
		Ingredients:  []Ingredient{{Name: "flour", Quantity: 300, Unit: "g"}},
	}

	proposals, _, err := svc.Preview(recipe, 1)
	require.NoError(t, err)
	require.Equal(t, MatchUnresolved, proposals["p-1"].Match)

	_, err = svc.Consume(context.Background(), recipe, 1, []ConsumptionProposal{proposals["p-1"]})
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))

	// 快照不動
	item, _ := store.Find("p-1")
	assert.Equal(t, 2.0, item.Quantity)
}

func TestConsumeService_RejectsUnknownItem(t *testing.T) {
	svc, _, _ := newTestConsumeService(t)

	_, err := svc.Consume(context.Background(), eggRecipe(), 2, []ConsumptionProposal{
		{PantryItemID: "ghost", Match: MatchExactUnit, InitialQuantity: 1, ProposedFinalQuantity: 0},
	})
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
}

func TestConsumeService_GatewayFailureRollsBack(t *testing.T) {
	svc, gw, store := newTestConsumeService(t,
		common.PantryItem{ID: "p-1", Name: "Eggs", Quantity: 12, Unit: "顆", Nutrition: &common.Nutrition{ProteinPerUnit: 6}},
	)
	gw.recordErr = fmt.Errorf("gateway down")

	prior := store.Snapshot()

	proposals, _, err := svc.Preview(eggRecipe(), 4)
	require.NoError(t, err)

	flat := []ConsumptionProposal{proposals["p-1"]}
	_, err = svc.Consume(context.Background(), eggRecipe(), 4, flat)
	require.Error(t, err)
	assert.True(t, common.IsPersistenceError(err))

	// 快照與提交前逐位元一致
	assert.Equal(t, prior, store.Items())
}

func TestConsumeService_Availability(t *testing.T) {
	svc, _, _ := newTestConsumeService(t,
		common.PantryItem{ID: "p-1", Name: "eggs", Quantity: 12, Unit: "顆"},
	)

	got := svc.Availability(eggRecipe())
	assert.Equal(t, 50, got.Percentage)
	assert.Equal(t, 1, got.MatchedCount)
}
