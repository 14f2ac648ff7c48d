package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"pantry-keeper/internal/infrastructure/config"
	"pantry-keeper/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Gateway Persistence Gateway 介面。所有呼叫都可能失敗，
// 失敗以 PersistenceError 傳播給呼叫方，不在此層吞掉或重試。
type Gateway interface {
	// ListItems 列出全部儲藏室項目
	ListItems(ctx context.Context) ([]common.PantryItem, error)

	// CreateItems 批次建立項目，回傳含識別碼的紀錄並保持輸入順序
	CreateItems(ctx context.Context, drafts []common.PantryItemDraft) ([]common.PantryItem, error)

	// UpdateItem 部分更新單一項目
	UpdateItem(ctx context.Context, id string, patch *common.PantryItemPatch) (*common.PantryItem, error)

	// DeleteItem 刪除單一項目
	DeleteItem(ctx context.Context, id string) error

	// ClearAll 清空儲藏室
	ClearAll(ctx context.Context) error

	// RecordRecipeUse 記錄一次食譜使用及各項目的扣減量
	RecordRecipeUse(ctx context.Context, recipeID string, servings int, deltas map[string]float64) error
}

// HTTPGateway 透過 HTTP 呼叫 Persistence Gateway
type HTTPGateway struct {
	config *config.Config
	client *resty.Client
}

// NewHTTPGateway 創建 HTTP Gateway 客戶端
func NewHTTPGateway(cfg *config.Config) *HTTPGateway {
	client := resty.New().
		SetBaseURL(cfg.Gateway.BaseURL).
		SetTimeout(cfg.Gateway.Timeout).
		SetHeader("Content-Type", "application/json")

	if cfg.Gateway.APIKey != "" {
		client.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Gateway.APIKey))
	}

	return &HTTPGateway{
		config: cfg,
		client: client,
	}
}

// ListItems 列出全部儲藏室項目
func (g *HTTPGateway) ListItems(ctx context.Context) ([]common.PantryItem, error) {
	var items []common.PantryItem
	start := time.Now()

	resp, err := g.client.R().
		SetContext(ctx).
		SetResult(&items).
		Get("/pantry/items")

	common.LogGatewayCall("list_items", time.Since(start), err)
	if err != nil {
		return nil, common.NewPersistenceError("list_items", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, common.NewPersistenceError("list_items", fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String()))
	}

	return items, nil
}

// CreateItems 批次建立項目，保持輸入順序
func (g *HTTPGateway) CreateItems(ctx context.Context, drafts []common.PantryItemDraft) ([]common.PantryItem, error) {
	var created []common.PantryItem
	start := time.Now()

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{"items": drafts}).
		SetResult(&created).
		Post("/pantry/items")

	common.LogGatewayCall("create_items", time.Since(start), err)
	if err != nil {
		return nil, common.NewPersistenceError("create_items", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return nil, common.NewPersistenceError("create_items", fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String()))
	}

	// gateway 契約要求保持輸入順序；數量不符視為錯誤
	if len(created) != len(drafts) {
		common.LogError("Gateway 回傳的建立筆數與輸入不符",
			zap.Int("expected", len(drafts)),
			zap.Int("got", len(created)),
		)
		return nil, common.NewPersistenceError("create_items", fmt.Errorf("expected %d created records, got %d", len(drafts), len(created)))
	}

	return created, nil
}

// UpdateItem 部分更新單一項目
func (g *HTTPGateway) UpdateItem(ctx context.Context, id string, patch *common.PantryItemPatch) (*common.PantryItem, error) {
	var updated common.PantryItem
	start := time.Now()

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(patch).
		SetResult(&updated).
		Patch(fmt.Sprintf("/pantry/items/%s", id))

	common.LogGatewayCall("update_item", time.Since(start), err)
	if err != nil {
		return nil, common.NewPersistenceError("update_item", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, common.NewPersistenceError("update_item", fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String()))
	}

	return &updated, nil
}

// DeleteItem 刪除單一項目
func (g *HTTPGateway) DeleteItem(ctx context.Context, id string) error {
	start := time.Now()

	resp, err := g.client.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/pantry/items/%s", id))

	common.LogGatewayCall("delete_item", time.Since(start), err)
	if err != nil {
		return common.NewPersistenceError("delete_item", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return common.NewPersistenceError("delete_item", fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String()))
	}

	return nil
}

// ClearAll 清空儲藏室
func (g *HTTPGateway) ClearAll(ctx context.Context) error {
	start := time.Now()

	resp, err := g.client.R().
		SetContext(ctx).
		Delete("/pantry/items")

	common.LogGatewayCall("clear_all", time.Since(start), err)
	if err != nil {
		return common.NewPersistenceError("clear_all", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return common.NewPersistenceError("clear_all", fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String()))
	}

	return nil
}

// RecordRecipeUse 記錄一次食譜使用
func (g *HTTPGateway) RecordRecipeUse(ctx context.Context, recipeID string, servings int, deltas map[string]float64) error {
	start := time.Now()

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"servings": servings,
			"deltas":   deltas,
		}).
		Post(fmt.Sprintf("/recipes/%s/use", recipeID))

	common.LogGatewayCall("record_recipe_use", time.Since(start), err)
	if err != nil {
		return common.NewPersistenceError("record_recipe_use", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return common.NewPersistenceError("record_recipe_use", fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String()))
	}

	return nil
}
