package extraction

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"pantry-keeper/internal/pkg/common"

	"go.uber.org/zap"
)

// resultCache 辨識結果的行程內快取：同一張收據圖片在 TTL 內
// 不重複呼叫辨識服務。鍵為圖片內容的 SHA-256。
type resultCache struct {
	mu      sync.RWMutex
	store   map[string]cacheEntry
	maxSize int
	ttl     time.Duration

	hits   int64
	misses int64
}

// cacheEntry 快取條目
type cacheEntry struct {
	drafts     []common.PantryItemDraft
	expiresAt  time.Time
	lastAccess time.Time
}

// newResultCache 創建辨識結果快取並啟動清理協程
func newResultCache(maxSize int, ttl time.Duration) *resultCache {
	c := &resultCache{
		store:   make(map[string]cacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
	}
	go c.startCleanup()
	return c
}

// key 計算圖片內容的快取鍵
func (c *resultCache) key(imageData string) string {
	hash := sha256.Sum256([]byte(imageData))
	return hex.EncodeToString(hash[:])
}

// get 查詢快取
func (c *resultCache) get(imageData string) ([]common.PantryItemDraft, bool) {
	k := c.key(imageData)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.store[k]
	if !exists || time.Now().After(entry.expiresAt) {
		if exists {
			delete(c.store, k)
		}
		c.misses++
		common.LogCacheMiss("extraction", k)
		return nil, false
	}

	entry.lastAccess = time.Now()
	c.store[k] = entry
	c.hits++
	common.LogCacheHit("extraction", k)

	out := make([]common.PantryItemDraft, len(entry.drafts))
	copy(out, entry.drafts)
	return out, true
}

// set 寫入快取；超過容量時淘汰最久未使用的條目
func (c *resultCache) set(imageData string, drafts []common.PantryItemDraft) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxSize {
		c.evictLRULocked()
	}

	stored := make([]common.PantryItemDraft, len(drafts))
	copy(stored, drafts)

	now := time.Now()
	c.store[c.key(imageData)] = cacheEntry{
		drafts:     stored,
		expiresAt:  now.Add(c.ttl),
		lastAccess: now,
	}
}

// evictLRULocked 淘汰最久未訪問的條目
func (c *resultCache) evictLRULocked() {
	var oldestKey string
	var oldestAccess time.Time

	for k, entry := range c.store {
		if oldestKey == "" || entry.lastAccess.Before(oldestAccess) {
			oldestKey = k
			oldestAccess = entry.lastAccess
		}
	}

	if oldestKey != "" {
		delete(c.store, oldestKey)
		common.LogInfo("辨識快取已淘汰(LRU)",
			zap.String("鍵", oldestKey),
		)
	}
}

// startCleanup 定期清理過期條目
func (c *resultCache) startCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		count := 0
		for k, entry := range c.store {
			if now.After(entry.expiresAt) {
				delete(c.store, k)
				count++
			}
		}
		c.mu.Unlock()

		if count > 0 {
			common.LogInfo("清理過期辨識快取",
				zap.Int("count", count),
			)
		}
	}
}
