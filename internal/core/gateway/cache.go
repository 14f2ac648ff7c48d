package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"pantry-keeper/internal/infrastructure/config"
	"pantry-keeper/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const snapshotKey = "pantry:items"

// CachedGateway 以 Redis 快取 ListItems 結果的 Gateway 裝飾器。
// 任何寫入操作成功後使快取失效；快取層故障只記錄日誌，不影響讀寫本身。
type CachedGateway struct {
	inner  Gateway
	client *redis.Client
	config *config.CacheConfig
}

// NewCachedGateway 創建快取裝飾器；快取停用時直接透傳
func NewCachedGateway(cfg *config.Config, inner Gateway) (*CachedGateway, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("快照快取已停用")
		return &CachedGateway{inner: inner, config: &cfg.Cache}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Cache.Addr,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("快照快取已初始化",
		zap.String("addr", cfg.Cache.Addr),
		zap.Duration("ttl", cfg.Cache.TTL),
	)

	return &CachedGateway{
		inner:  inner,
		client: client,
		config: &cfg.Cache,
	}, nil
}

// ListItems 先查快取，未命中再呼叫底層 gateway 並回填
func (c *CachedGateway) ListItems(ctx context.Context) ([]common.PantryItem, error) {
	if c.config.Enabled && c.client != nil {
		data, err := c.client.Get(ctx, snapshotKey).Bytes()
		if err == nil {
			var items []common.PantryItem
			if err := json.Unmarshal(data, &items); err == nil {
				common.LogCacheHit("snapshot", snapshotKey)
				return items, nil
			}
			// 快取內容損壞，當作未命中
			common.LogWarn("快照快取內容無法解析，忽略", zap.Error(err))
		} else if err != redis.Nil {
			common.LogWarn("快照快取讀取失敗", zap.Error(err))
		} else {
			common.LogCacheMiss("snapshot", snapshotKey)
		}
	}

	items, err := c.inner.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	if c.config.Enabled && c.client != nil {
		if data, err := json.Marshal(items); err == nil {
			if err := c.client.Set(ctx, snapshotKey, data, c.config.TTL).Err(); err != nil {
				common.LogWarn("快照快取寫入失敗", zap.Error(err))
			}
		}
	}

	return items, nil
}

// invalidate 使快照快取失效
func (c *CachedGateway) invalidate(ctx context.Context) {
	if !c.config.Enabled || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, snapshotKey).Err(); err != nil {
		common.LogWarn("快照快取失效操作失敗", zap.Error(err))
	}
}

// CreateItems 透傳並使快取失效
func (c *CachedGateway) CreateItems(ctx context.Context, drafts []common.PantryItemDraft) ([]common.PantryItem, error) {
	created, err := c.inner.CreateItems(ctx, drafts)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return created, nil
}

// UpdateItem 透傳並使快取失效
func (c *CachedGateway) UpdateItem(ctx context.Context, id string, patch *common.PantryItemPatch) (*common.PantryItem, error) {
	updated, err := c.inner.UpdateItem(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return updated, nil
}

// DeleteItem 透傳並使快取失效
func (c *CachedGateway) DeleteItem(ctx context.Context, id string) error {
	if err := c.inner.DeleteItem(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// ClearAll 透傳並使快取失效
func (c *CachedGateway) ClearAll(ctx context.Context) error {
	if err := c.inner.ClearAll(ctx); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// RecordRecipeUse 透傳並使快取失效
func (c *CachedGateway) RecordRecipeUse(ctx context.Context, recipeID string, servings int, deltas map[string]float64) error {
	if err := c.inner.RecordRecipeUse(ctx, recipeID, servings, deltas); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Close 關閉快取連接
func (c *CachedGateway) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
