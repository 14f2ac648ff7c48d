package recipe

import (
	"context"

	"pantry-keeper/internal/core/gateway"
	"pantry-keeper/internal/core/pantry"
	"pantry-keeper/internal/infrastructure/config"
	"pantry-keeper/internal/pkg/common"

	"go.uber.org/zap"
)

// ConsumeService 食譜使用服務：產生扣減提案、套用覆寫、
// 提交一次食譜使用並維護本地快照
type ConsumeService struct {
	config  *config.Config
	gateway gateway.Gateway
	store   *pantry.SnapshotStore
	scaler  *Scaler
}

// NewConsumeService 創建食譜使用服務
func NewConsumeService(cfg *config.Config, gw gateway.Gateway, store *pantry.SnapshotStore) *ConsumeService {
	return &ConsumeService{
		config:  cfg,
		gateway: gw,
		store:   store,
		scaler:  NewScaler(cfg),
	}
}

// Scaler 回傳共用的消耗量計算器
func (s *ConsumeService) Scaler() *Scaler {
	return s.scaler
}

// Preview 以目前快照產生扣減提案與覆蓋率，供使用者審核
func (s *ConsumeService) Preview(recipe Recipe, targetServings int) (map[string]ConsumptionProposal, RecipeAvailability, error) {
	inventory := s.store.Items()

	proposals, err := s.scaler.ComputeDeltas(recipe, targetServings, inventory)
	if err != nil {
		return nil, RecipeAvailability{}, err
	}

	availability := ComputeAvailability(recipe, inventory)
	return proposals, availability, nil
}

// Availability 回傳目前快照對食譜的覆蓋率
func (s *ConsumeService) Availability(recipe Recipe) RecipeAvailability {
	return ComputeAvailability(recipe, s.store.Items())
}

// Consume 提交一次食譜使用。所有提案必須已解決（無 Unresolved），
// 樂觀套用最終數量後呼叫 gateway；失敗時精確還原快照並傳播錯誤。
func (s *ConsumeService) Consume(ctx context.Context, recipe Recipe, targetServings int, proposals []ConsumptionProposal) (map[string]float64, error) {
	deltas := make(map[string]float64, len(proposals))
	for _, p := range proposals {
		if p.Match == MatchUnresolved {
			return nil, common.NewValidationError("項目 %s 的單位不一致尚未解決，無法扣減", p.PantryName)
		}
		if _, ok := s.store.Find(p.PantryItemID); !ok {
			return nil, common.NewValidationError("提案指向不存在的儲藏室項目：%s", p.PantryItemID)
		}
		if d := s.scaler.Delta(p); d > 0 {
			deltas[p.PantryItemID] = d
		}
	}

	// 樂觀更新：先把最終數量寫入本地快照
	prior := s.store.Snapshot()
	for _, p := range proposals {
		s.store.SetQuantity(p.PantryItemID, p.ProposedFinalQuantity)
	}

	if err := s.gateway.RecordRecipeUse(ctx, recipe.ID, targetServings, deltas); err != nil {
		s.store.Restore(prior)
		return nil, err
	}

	common.LogInfo("食譜使用已記錄",
		zap.String("食譜", recipe.Name),
		zap.Int("份數", targetServings),
		zap.Int("扣減項目數", len(deltas)),
	)

	return deltas, nil
}
