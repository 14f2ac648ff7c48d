package recipe

import (
	"math"

	"pantry-keeper/internal/core/pantry"
	"pantry-keeper/internal/infrastructure/config"
	"pantry-keeper/internal/pkg/common"

	"go.uber.org/zap"
)

// Scaler 消耗量計算器：把食譜的食材清單縮放到目標份數，
// 對應到儲藏室項目並推導應扣減的數量
type Scaler struct {
	decimals int
}

// NewScaler 創建消耗量計算器，進位位數來自設定（全引擎共用一個進位策略）
func NewScaler(cfg *config.Config) *Scaler {
	return &Scaler{
		decimals: cfg.Pantry.RoundDecimals,
	}
}

// round 共用的量化進位，壓掉浮點雜訊
func (s *Scaler) round(x float64) float64 {
	shift := math.Pow10(s.decimals)
	return math.Round(x*shift) / shift
}

// ComputeDeltas 對每個能對應到儲藏室紀錄的食材需求產生扣減提案。
// 份數變更時整張表從食譜與目前快照重算，不對前次結果做增量調整，
// 避免進位誤差累積。
func (s *Scaler) ComputeDeltas(recipe Recipe, targetServings int, inventory []common.PantryItem) (map[string]ConsumptionProposal, error) {
	if recipe.BaseServings <= 0 {
		return nil, common.NewValidationError("食譜基準份數必須為正數：%s", recipe.Name)
	}
	if targetServings <= 0 {
		return nil, common.NewValidationError("目標份數必須為正數")
	}

	scale := float64(targetServings) / float64(recipe.BaseServings)
	proposals := make(map[string]ConsumptionProposal, len(recipe.Ingredients))

	for _, req := range recipe.Ingredients {
		item, ok := pantry.FindByName(req.Name, inventory)
		if !ok {
			// 對應不到的食材不產生扣減
			continue
		}
		if _, seen := proposals[item.ID]; seen {
			// 兩個需求對應到同一筆紀錄時以先出現者為準
			common.LogDebug("食材需求重複對應到同一儲藏室項目，略過",
				zap.String("食材", req.Name),
				zap.String("項目", item.Name),
			)
			continue
		}

		scaled := s.round(req.Quantity * scale)
		p := ConsumptionProposal{
			PantryItemID:     item.ID,
			PantryName:       item.Name,
			Unit:             item.Unit,
			RequiredQuantity: scaled,
			RequiredUnit:     req.Unit,
			InitialQuantity:  item.Quantity,
		}

		if item.Unit == req.Unit {
			// 單位一致：自動扣減，最低為 0
			p.Match = MatchExactUnit
			p.ProposedFinalQuantity = s.round(math.Max(0, item.Quantity-scaled))
		} else {
			// 單位不一致：不做自動扣減，留給使用者裁決
			p.Match = MatchUnresolved
			p.ProposedFinalQuantity = item.Quantity
		}
		p.UnitsMatch = p.Match != MatchUnresolved

		proposals[item.ID] = p
	}

	return proposals, nil
}

// ApplyOverride 套用使用者的手動覆寫並重新推導比對結果：
// 與儲藏室單位一致且數量有變 → 視為使用者已自行換算（權威）；
// 與儲藏室單位一致且數量未變 → 單位一致的重述；
// 其他情況維持待決，不扣減。
func (s *Scaler) ApplyOverride(p ConsumptionProposal, quantity float64, unit string) ConsumptionProposal {
	quantity = s.round(math.Max(0, quantity))

	switch {
	case unit == p.Unit && quantity != p.InitialQuantity:
		p.Match = MatchUserConverted
		p.ProposedFinalQuantity = quantity
	case unit == p.Unit:
		p.Match = MatchExactUnit
		p.ProposedFinalQuantity = quantity
	default:
		p.Match = MatchUnresolved
		p.ProposedFinalQuantity = p.InitialQuantity
	}
	p.UnitsMatch = p.Match != MatchUnresolved

	return p
}

// Delta 推導要送往 gateway 的扣減量；上游已套用 max(0, …) 下限，
// 這裡只做共用的量化進位，不會產生負值
func (s *Scaler) Delta(p ConsumptionProposal) float64 {
	return s.round(math.Max(0, p.InitialQuantity-p.ProposedFinalQuantity))
}
