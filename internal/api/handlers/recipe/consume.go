package recipe

import (
	"net/http"
	"sort"

	recipeCore "pantry-keeper/internal/core/recipe"
	"pantry-keeper/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PreviewRequest 食譜扣減預覽請求
type PreviewRequest struct {
	Recipe         common.Recipe `json:"recipe" binding:"required"`
	TargetServings int           `json:"target_servings" binding:"required"`
}

// Override 使用者對單一提案的手動覆寫
type Override struct {
	PantryItemID string  `json:"pantry_item_id" binding:"required"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

// ConsumeRequest 食譜使用提交請求。提案由伺服器以目前快照重算，
// 覆寫逐筆套用，避免信任客戶端送回的整張提案表
type ConsumeRequest struct {
	Recipe         common.Recipe `json:"recipe" binding:"required"`
	TargetServings int           `json:"target_servings" binding:"required"`
	Overrides      []Override    `json:"overrides,omitempty"`
}

// AvailabilityRequest 食譜覆蓋率請求
type AvailabilityRequest struct {
	Recipe common.Recipe `json:"recipe" binding:"required"`
}

// Handler 食譜使用處理程序
type Handler struct {
	consumeService *recipeCore.ConsumeService
}

// NewHandler 創建食譜使用處理程序
func NewHandler(consumeService *recipeCore.ConsumeService) *Handler {
	return &Handler{
		consumeService: consumeService,
	}
}

// requestID 取得或生成請求 ID
func requestID(c *gin.Context) string {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = uuid.New().String()
		c.Header("X-Request-ID", id)
	}
	return id
}

// respondError 依錯誤類型決定 HTTP 狀態碼
func respondError(c *gin.Context, reqID string, err error) {
	switch {
	case common.IsValidationError(err):
		common.LogWarn("請求驗證失敗",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  common.ErrCodeInvalidRequest,
		})
	case common.IsPersistenceError(err):
		common.LogError("後端儲存服務錯誤",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "後端儲存服務錯誤",
			"code":  common.ErrCodeBadGateway,
		})
	default:
		common.LogError("內部錯誤",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
			"code":  common.ErrCodeInternalError,
		})
	}
}

// sortedProposals 以項目名稱排序，讓回應順序穩定
func sortedProposals(m map[string]recipeCore.ConsumptionProposal) []recipeCore.ConsumptionProposal {
	out := make([]recipeCore.ConsumptionProposal, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PantryName < out[j].PantryName
	})
	return out
}

// HandlePreview 產生扣減提案與覆蓋率供使用者審核
func (h *Handler) HandlePreview(c *gin.Context) {
	reqID := requestID(c)

	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	proposals, availability, err := h.consumeService.Preview(req.Recipe, req.TargetServings)
	if err != nil {
		respondError(c, reqID, err)
		return
	}

	common.LogInfo("扣減預覽完成",
		zap.String("request_id", reqID),
		zap.String("食譜", req.Recipe.Name),
		zap.Int("份數", req.TargetServings),
		zap.Int("提案數", len(proposals)),
	)

	c.JSON(http.StatusOK, gin.H{
		"proposals":    sortedProposals(proposals),
		"availability": availability,
	})
}

// HandleConsume 套用覆寫後提交一次食譜使用
func (h *Handler) HandleConsume(c *gin.Context) {
	reqID := requestID(c)

	var req ConsumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	// 以目前快照重算整張提案表，再逐筆套用覆寫
	proposals, _, err := h.consumeService.Preview(req.Recipe, req.TargetServings)
	if err != nil {
		respondError(c, reqID, err)
		return
	}

	scaler := h.consumeService.Scaler()
	for _, ov := range req.Overrides {
		p, ok := proposals[ov.PantryItemID]
		if !ok {
			respondError(c, reqID, common.NewValidationError("覆寫指向不存在的提案：%s", ov.PantryItemID))
			return
		}
		proposals[ov.PantryItemID] = scaler.ApplyOverride(p, ov.Quantity, ov.Unit)
	}

	deltas, err := h.consumeService.Consume(c.Request.Context(), req.Recipe, req.TargetServings, sortedProposals(proposals))
	if err != nil {
		respondError(c, reqID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deltas":         deltas,
		"consumed_count": len(deltas),
	})
}

// HandleAvailability 計算儲藏室對食譜的覆蓋率
func (h *Handler) HandleAvailability(c *gin.Context) {
	reqID := requestID(c)

	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	c.JSON(http.StatusOK, h.consumeService.Availability(req.Recipe))
}
