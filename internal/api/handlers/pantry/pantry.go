package pantry

import (
	"net/http"

	"pantry-keeper/internal/core/gateway"
	pantryCore "pantry-keeper/internal/core/pantry"
	"pantry-keeper/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmitBatchRequest 批次提交請求
type SubmitBatchRequest struct {
	Items []common.PantryItemDraft `json:"items" binding:"required"`
}

// ResolveRequest 衝突解決請求。action 為 merge、merge_and_edit、
// create_separate 或 commit_edit；commit_edit 需附上編輯後的草稿
type ResolveRequest struct {
	Action string                  `json:"action" binding:"required"`
	Edited *common.PantryItemDraft `json:"edited,omitempty"`
}

// ResolutionStatus 解決佇列的對外狀態
type ResolutionStatus struct {
	State            pantryCore.State          `json:"state"`
	Active           *pantryCore.DuplicatePair `json:"active,omitempty"`
	PendingConflicts int                       `json:"pending_conflicts"`
}

// Handler 儲藏室處理程序
type Handler struct {
	reconciler *pantryCore.Reconciler
	gateway    gateway.Gateway
	store      *pantryCore.SnapshotStore
}

// NewHandler 創建儲藏室處理程序
func NewHandler(rec *pantryCore.Reconciler, gw gateway.Gateway, store *pantryCore.SnapshotStore) *Handler {
	return &Handler{
		reconciler: rec,
		gateway:    gw,
		store:      store,
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
	case common.IsConflictStateError(err):
		common.LogWarn("狀態衝突",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
			"code":  common.ErrCodeConflict,
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

// status 目前的解決佇列狀態
func (h *Handler) status() ResolutionStatus {
	s := ResolutionStatus{
		State:            h.reconciler.State(),
		PendingConflicts: h.reconciler.PendingConflicts(),
	}
	if pair, ok := h.reconciler.Active(); ok {
		s.Active = &pair
	}
	return s
}

// HandleListItems 列出目前的庫存快照
func (h *Handler) HandleListItems(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items":      h.reconciler.Items(),
		"resolution": h.status(),
	})
}

// HandleSubmitBatch 提交一批進貨草稿進行對帳
func (h *Handler) HandleSubmitBatch(c *gin.Context) {
	reqID := requestID(c)

	var req SubmitBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.reconciler.SubmitBatch(c.Request.Context(), req.Items)
	if err != nil {
		respondError(c, reqID, err)
		return
	}

	common.LogInfo("批次提交完成",
		zap.String("request_id", reqID),
		zap.Int("created", len(result.Created)),
		zap.Int("queued_conflicts", result.QueuedConflicts),
		zap.Int("rejected", len(result.Rejected)),
	)

	c.JSON(http.StatusOK, gin.H{
		"result":     result,
		"resolution": h.status(),
	})
}

// HandleResolve 對審核中的衝突執行處理方式
func (h *Handler) HandleResolve(c *gin.Context) {
	reqID := requestID(c)

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	// commit_edit 走獨立路徑：提交 merge_and_edit 之後編輯完成的草稿
	if req.Action == "commit_edit" {
		if req.Edited == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "commit_edit 需要附上編輯後的草稿"})
			return
		}
		if err := h.reconciler.CommitEdit(c.Request.Context(), *req.Edited); err != nil {
			respondError(c, reqID, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"resolution": h.status()})
		return
	}

	action, err := pantryCore.ParseAction(req.Action)
	if err != nil {
		respondError(c, reqID, err)
		return
	}

	merged, err := h.reconciler.Resolve(c.Request.Context(), action)
	if err != nil {
		respondError(c, reqID, err)
		return
	}

	resp := gin.H{"resolution": h.status()}
	if merged != nil {
		// merge_and_edit：回傳合併後的草稿供前端編輯
		resp["merged"] = merged
	}
	c.JSON(http.StatusOK, resp)
}

// HandleCancel 取消整個解決流程
func (h *Handler) HandleCancel(c *gin.Context) {
	reqID := requestID(c)

	if err := h.reconciler.Cancel(); err != nil {
		respondError(c, reqID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resolution": h.status()})
}

// HandleUpdateItem 部分更新單一項目
func (h *Handler) HandleUpdateItem(c *gin.Context) {
	reqID := requestID(c)
	id := c.Param("id")

	// 寫入一次一筆：解決流程進行中不接受直接編輯
	if h.reconciler.State() != pantryCore.StateIdle {
		respondError(c, reqID, common.NewConflictStateError("解決流程進行中，無法直接編輯項目"))
		return
	}

	var patch common.PantryItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if patch.Name != nil && *patch.Name == "" {
		respondError(c, reqID, common.NewValidationError("項目名稱不可為空"))
		return
	}
	if patch.Quantity != nil && *patch.Quantity < 0 {
		respondError(c, reqID, common.NewValidationError("項目數量不可為負"))
		return
	}

	updated, err := h.gateway.UpdateItem(c.Request.Context(), id, &patch)
	if err != nil {
		respondError(c, reqID, err)
		return
	}
	h.store.Update(*updated)

	common.LogInfo("項目已更新",
		zap.String("request_id", reqID),
		zap.String("id", id),
	)
	c.JSON(http.StatusOK, updated)
}

// HandleDeleteItem 刪除單一項目
func (h *Handler) HandleDeleteItem(c *gin.Context) {
	reqID := requestID(c)
	id := c.Param("id")

	if h.reconciler.State() != pantryCore.StateIdle {
		respondError(c, reqID, common.NewConflictStateError("解決流程進行中，無法刪除項目"))
		return
	}
	if _, ok := h.store.Find(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "項目不存在",
			"code":  common.ErrCodeNotFound,
		})
		return
	}

	if err := h.gateway.DeleteItem(c.Request.Context(), id); err != nil {
		respondError(c, reqID, err)
		return
	}
	h.store.Remove(id)

	common.LogInfo("項目已刪除",
		zap.String("request_id", reqID),
		zap.String("id", id),
	)
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// HandleClearAll 清空儲藏室
func (h *Handler) HandleClearAll(c *gin.Context) {
	reqID := requestID(c)

	if h.reconciler.State() != pantryCore.StateIdle {
		respondError(c, reqID, common.NewConflictStateError("解決流程進行中，無法清空儲藏室"))
		return
	}

	if err := h.gateway.ClearAll(c.Request.Context()); err != nil {
		respondError(c, reqID, err)
		return
	}
	h.store.Clear()

	common.LogInfo("儲藏室已清空", zap.String("request_id", reqID))
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
