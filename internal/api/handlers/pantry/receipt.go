package pantry

import (
	"encoding/json"
	"net/http"
	"strings"

	"pantry-keeper/internal/core/extraction"
	pantryCore "pantry-keeper/internal/core/pantry"
	"pantry-keeper/internal/pkg/common"

	"go.uber.org/zap"
)

// ReceiptRequest 收據辨識請求
type ReceiptRequest struct {
	Image string `json:"image" binding:"required"`
}

// ReceiptResponse 收據辨識加上對帳的結果
type ReceiptResponse struct {
	Drafts []common.PantryItemDraft `json:"drafts"`
	Result *pantryCore.BatchResult  `json:"result"`
	State  pantryCore.State         `json:"state"`
}

// HandleReceiptExtraction 處理收據圖片：辨識出品項草稿後直接送進對帳流程
func HandleReceiptExtraction(extractionService *extraction.Service, rec *pantryCore.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// 生成請求 ID
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = common.GenerateUUID()
			w.Header().Set("X-Request-ID", reqID)
		}

		if extractionService == nil {
			common.LogWarn("收據辨識服務未啟用",
				zap.String("request_id", reqID))
			common.WriteErrorResponse(w, http.StatusServiceUnavailable, "Receipt extraction is disabled")
			return
		}

		// 解析請求
		var req ReceiptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.LogError("Invalid request format",
				zap.Error(err),
				zap.String("request_id", reqID))
			common.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request format")
			return
		}

		// 驗證圖片格式
		if req.Image == "" || (!strings.HasPrefix(req.Image, "data:image/") && !strings.HasPrefix(req.Image, "http")) {
			common.LogError("Invalid image format (handler)",
				zap.String("request_id", reqID),
				zap.Int("image_length", len(req.Image)),
			)
			common.WriteErrorResponse(w, http.StatusBadRequest, "Invalid image format")
			return
		}

		// 辨識收據品項
		drafts, err := extractionService.Extract(r.Context(), req.Image)
		if err != nil {
			if strings.Contains(err.Error(), "image") {
				common.LogError("Invalid image (service)",
					zap.Error(err),
					zap.String("request_id", reqID))
				common.WriteErrorResponse(w, http.StatusBadRequest, "Invalid image")
				return
			}
			common.LogError("Failed to extract receipt items",
				zap.Error(err),
				zap.String("request_id", reqID))
			common.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to extract receipt items")
			return
		}

		// 辨識結果直接進入對帳流程
		result, err := rec.SubmitBatch(r.Context(), drafts)
		if err != nil {
			switch {
			case common.IsConflictStateError(err):
				common.WriteErrorResponse(w, http.StatusConflict, err.Error())
			case common.IsPersistenceError(err):
				common.WriteErrorResponse(w, http.StatusBadGateway, "後端儲存服務錯誤")
			default:
				common.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
			}
			common.LogError("收據批次對帳失敗",
				zap.Error(err),
				zap.String("request_id", reqID))
			return
		}

		// 返回響應
		response := ReceiptResponse{
			Drafts: drafts,
			Result: result,
			State:  rec.State(),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			common.LogError("Failed to encode response",
				zap.Error(err),
				zap.String("request_id", reqID))
			common.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to encode response")
			return
		}

		// 記錄成功
		common.LogInfo("收據辨識與對帳完成",
			zap.String("request_id", reqID),
			zap.Int("drafts_count", len(drafts)),
			zap.Int("queued_conflicts", result.QueuedConflicts))
	}
}
