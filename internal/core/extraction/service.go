package extraction

import (
	"context"
	"fmt"
	"strings"
	"time"

	imagesvc "pantry-keeper/internal/core/image"
	"pantry-keeper/internal/infrastructure/config"
	"pantry-keeper/internal/pkg/common"

	"go.uber.org/zap"
)

// extractionResult 辨識服務回傳的原始結構
type extractionResult struct {
	Items []struct {
		Name     string  `json:"name"`
		Quantity float64 `json:"quantity"`
		Unit     string  `json:"unit"`
		Category string  `json:"category"`
		Price    float64 `json:"price"`
	} `json:"items"`
	Summary string `json:"summary"`
}

// Service 收據辨識服務：上傳的收據圖片 → 儲藏室草稿列表。
// 引擎只消費輸出列表，不驗證辨識品質；空名稱的草稿在這裡過濾，
// 預設單位與分類也在這個邊界一次補齊。
type Service struct {
	config   *config.Config
	client   *Client
	imageSvc *imagesvc.Service
	cache    *resultCache
}

// NewService 創建收據辨識服務
func NewService(cfg *config.Config) *Service {
	return &Service{
		config:   cfg,
		client:   NewClient(cfg),
		imageSvc: imagesvc.NewService(cfg.Image.MaxSizeBytes),
		cache:    newResultCache(200, 24*time.Hour),
	}
}

// Extract 辨識收據圖片中的品項並轉為草稿列表
func (s *Service) Extract(ctx context.Context, imageData string) ([]common.PantryItemDraft, error) {
	// 驗證圖片
	if imageData == "" {
		return nil, fmt.Errorf("invalid image: image data is empty")
	}

	// 處理圖片
	processedImage, err := s.imageSvc.ProcessImage(imageData)
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	// 同一張收據在 TTL 內直接用快取結果
	if drafts, ok := s.cache.get(processedImage); ok {
		return drafts, nil
	}

	// 構建提示
	prompt := `請仔細分析收據圖片中購買的食材品項，並提供詳細的辨識結果（用繁體中文回答）(不需要考慮可讀性，請省略所有空格和換行，返回最緊湊的 JSON 格式)。
		要求：
		1. 只辨識收據上實際出現的食材品項，略過非食材（袋子、運費、折扣）
		2. 不要添加收據上未出現的品項
		3. 根據收據內容判斷數量、單位和價格
		4. 如果無法確定某個屬性，請使用空字串而不是猜測
		5. 所有欄位必須使用雙引號
		6. 不要使用\n，不需要換行
		請以以下 JSON 格式返回：
		{
			"items": [
				{
					"name": "品項名稱",
					"quantity": 數量,
					"unit": "單位",
					"category": "分類",
					"price": 價格
				}
			],
			"summary": "辨識內容摘要，方便使用者核對確認"
		}`

	// 發送請求到辨識服務
	start := time.Now()
	content, err := s.client.GenerateResponse(ctx, prompt, processedImage)
	if err != nil {
		common.LogError("收據辨識請求失敗",
			zap.Error(err),
			zap.Duration("耗時", time.Since(start)),
		)
		return nil, fmt.Errorf("failed to process extraction request: %w", err)
	}

	drafts, err := s.parseDrafts(content)
	if err != nil {
		return nil, err
	}

	s.cache.set(processedImage, drafts)

	// 記錄成功信息，但不包含詳細內容
	common.LogInfo("收據品項辨識完成",
		zap.Int("items_count", len(drafts)),
		zap.Duration("耗時", time.Since(start)),
	)

	return drafts, nil
}

// parseDrafts 解析模型回應並在邊界補齊預設值；
// 空名稱的草稿在重複偵測執行前就被過濾掉
func (s *Service) parseDrafts(content string) ([]common.PantryItemDraft, error) {
	content = common.ExtractJSONObject(content)
	content = common.QuoteJSONKeys(content)

	var result extractionResult
	if err := common.ParseJSON(content, &result); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	drafts := make([]common.PantryItemDraft, 0, len(result.Items))
	for _, item := range result.Items {
		if strings.TrimSpace(item.Name) == "" {
			continue
		}

		draft := common.PantryItemDraft{
			Name:     strings.TrimSpace(item.Name),
			Quantity: item.Quantity,
			Unit:     item.Unit,
			Category: item.Category,
			Price:    item.Price,
		}

		// 預設值只在這個邊界決定一次
		if draft.Quantity <= 0 {
			draft.Quantity = 1
		}
		if draft.Unit == "" {
			draft.Unit = s.config.Pantry.DefaultUnit
		}
		if draft.Category == "" {
			draft.Category = s.config.Pantry.DefaultCategory
		}

		drafts = append(drafts, draft)
	}

	return drafts, nil
}
